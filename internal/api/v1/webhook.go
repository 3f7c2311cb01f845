package v1

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paper-indonesia/circe-credits/internal/integration/paperid"
	"github.com/paper-indonesia/circe-credits/internal/integration/paperid/webhook"
	"github.com/paper-indonesia/circe-credits/internal/logger"
)

// WebhookHandler receives Paper.id webhook deliveries. Beyond signature
// verification it never fails the request; the gateway treats anything
// other than 2xx as a delivery failure and retries.
type WebhookHandler struct {
	handler *webhook.Handler
	log     *logger.Logger
}

func NewWebhookHandler(handler *webhook.Handler, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{handler: handler, log: log}
}

func (h *WebhookHandler) HandlePaperWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Errorw("failed to read webhook payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	signature := c.GetHeader(paperid.HeaderWebhookSignature)
	if err := h.handler.VerifySignature(payload, signature); err != nil {
		h.log.Warnw("webhook signature verification failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event webhook.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.log.Errorw("failed to decode webhook event", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}

	if err := h.handler.HandleWebhookEvent(c.Request.Context(), &event); err != nil {
		h.log.Errorw("failed to handle webhook event", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
