package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paper-indonesia/circe-credits/internal/api/dto"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/service"
)

type CreditGrantHandler struct {
	service service.CreditGrantService
	log     *logger.Logger
}

func NewCreditGrantHandler(service service.CreditGrantService, log *logger.Logger) *CreditGrantHandler {
	return &CreditGrantHandler{service: service, log: log}
}

// GetCustomerCredits returns a customer's credit grants together with
// the aggregated per-service balances.
func (h *CreditGrantHandler) GetCustomerCredits(c *gin.Context) {
	customerID := c.Param("id")
	if customerID == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation))
		return
	}
	includeExpired := c.Query("include_expired") == "true"

	resp, err := h.service.GetCustomerCredits(c.Request.Context(), customerID, includeExpired)
	if err != nil {
		h.log.Errorw("failed to get customer credits", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCustomerCreditSummary returns the customer-level credit totals.
func (h *CreditGrantHandler) GetCustomerCreditSummary(c *gin.Context) {
	customerID := c.Param("id")
	if customerID == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetCustomerCreditSummary(c.Request.Context(), customerID)
	if err != nil {
		h.log.Errorw("failed to get credit summary", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConsumeCredit is called by the booking system when a service is
// rendered against prepaid credits.
func (h *CreditGrantHandler) ConsumeCredit(c *gin.Context) {
	var req dto.ConsumeCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ConsumeCredit(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to consume credit", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
