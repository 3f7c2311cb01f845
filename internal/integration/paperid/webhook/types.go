package webhook

import (
	"time"

	"github.com/paper-indonesia/circe-credits/internal/types"
)

// Webhook event types delivered by the gateway.
const (
	EventInvoicePaid    = "invoice.paid"
	EventInvoiceExpired = "invoice.expired"
)

// WebhookEvent is the envelope of a Paper.id webhook delivery.
type WebhookEvent struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	Data      InvoiceEventData `json:"data"`
}

// InvoiceEventData is the invoice payload of a webhook event. The paid
// amount arrives with the same inconsistent encoding as amount_paid
// upstream, so it uses the tolerant amount type.
type InvoiceEventData struct {
	InvoiceID  string             `json:"invoice_id"`
	ExternalID string             `json:"external_id"`
	Status     string             `json:"status"`
	PaidAmount types.AmountString `json:"paid_amount"`
	PaidAt     *time.Time         `json:"paid_at,omitempty"`
}
