package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paper-indonesia/circe-credits/internal/api/dto"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/service"
)

type PurchaseHandler struct {
	service service.PurchaseService
	log     *logger.Logger
}

func NewPurchaseHandler(service service.PurchaseService, log *logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{service: service, log: log}
}

// CreatePurchase records a package purchase in the pending_payment state.
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePurchase(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to create purchase", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPurchase returns a single purchase by ID.
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Purchase ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPurchase(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListActionablePending lists a customer's purchases still awaiting
// payment confirmation.
func (h *PurchaseHandler) ListActionablePending(c *gin.Context) {
	customerID := c.Param("id")
	if customerID == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListActionablePending(c.Request.Context(), customerID)
	if err != nil {
		h.log.Errorw("failed to list pending purchases", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmPayment settles a cash or bank transfer purchase at the
// front desk and activates its credit grants.
func (h *PurchaseHandler) ConfirmPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Purchase ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ConfirmPayment(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Errorw("failed to confirm payment", "purchase_id", id, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// IssueInvoice creates (or re-surfaces) the payment-gateway invoice
// for a paper_digital purchase.
func (h *PurchaseHandler) IssueInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Purchase ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.IssueInvoice(c.Request.Context(), id, &req)
	if err != nil {
		h.log.Errorw("failed to issue invoice", "purchase_id", id, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
