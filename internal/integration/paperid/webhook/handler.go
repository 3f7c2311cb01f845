package webhook

import (
	"context"

	"github.com/paper-indonesia/circe-credits/internal/integration/paperid"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/service"
)

// Handler processes Paper.id webhook events.
type Handler struct {
	client      paperid.PaperClient
	purchaseSvc service.PurchaseService
	logger      *logger.Logger
}

// NewHandler creates a new Paper.id webhook handler
func NewHandler(
	client paperid.PaperClient,
	purchaseSvc service.PurchaseService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		client:      client,
		purchaseSvc: purchaseSvc,
		logger:      log,
	}
}

// VerifySignature checks the delivery signature before the payload is
// trusted.
func (h *Handler) VerifySignature(payload []byte, signature string) error {
	return h.client.VerifyWebhookSignature(payload, signature)
}

// HandleWebhookEvent processes a gateway event. Errors are logged and
// swallowed so the gateway always receives 200 and does not retry
// endlessly; activation itself is safe under redelivery.
func (h *Handler) HandleWebhookEvent(ctx context.Context, event *WebhookEvent) error {
	h.logger.Infow("processing gateway webhook event",
		"event_id", event.ID,
		"event_type", event.Type,
		"invoice_id", event.Data.InvoiceID)

	if event.Type != EventInvoicePaid {
		h.logger.Infow("ignoring non-payment event", "event_type", event.Type)
		return nil
	}

	if event.Data.InvoiceID == "" {
		h.logger.Warnw("webhook event has no invoice_id, skipping",
			"event_id", event.ID)
		return nil
	}

	if err := h.purchaseSvc.ActivateFromGateway(ctx, event.Data.InvoiceID, event.Data.PaidAmount); err != nil {
		h.logger.Errorw("failed to activate purchase from webhook",
			"event_id", event.ID,
			"invoice_id", event.Data.InvoiceID,
			"error", err)
	}
	return nil
}
