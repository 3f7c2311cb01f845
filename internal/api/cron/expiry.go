package cron

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/service"
)

// CreditExpiryHandler hosts the scheduled sweep that marks due grants
// as expired. It is exposed as an endpoint so an external scheduler can
// trigger it.
type CreditExpiryHandler struct {
	creditGrantService service.CreditGrantService
	log                *logger.Logger
}

func NewCreditExpiryHandler(creditGrantService service.CreditGrantService, log *logger.Logger) *CreditExpiryHandler {
	return &CreditExpiryHandler{
		creditGrantService: creditGrantService,
		log:                log,
	}
}

// ExpireCredits marks every grant whose expiry has passed as expired so
// aggregation stops counting it.
func (h *CreditExpiryHandler) ExpireCredits(c *gin.Context) {
	h.log.Infow("starting credit grant expiry sweep")

	resp, err := h.creditGrantService.ExpireDueGrants(c.Request.Context())
	if err != nil {
		h.log.Errorw("credit grant expiry sweep failed", "error", err)
		c.Error(err)
		return
	}

	h.log.Infow("completed credit grant expiry sweep", "expired_count", resp.ExpiredCount)
	c.JSON(http.StatusOK, resp)
}
