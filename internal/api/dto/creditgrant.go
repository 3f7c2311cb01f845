package dto

import (
	"time"

	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
)

// AggregatedServiceCredit is the per-service balance view derived from
// all of a customer's non-expired grants for that service.
type AggregatedServiceCredit struct {
	ServiceName      string                     `json:"service_name"`
	TotalCredits     int                        `json:"total_credits"`
	RemainingCredits int                        `json:"remaining_credits"`
	UsedCredits      int                        `json:"used_credits"`
	HasNoExpiry      bool                       `json:"has_no_expiry"`
	EarliestExpiry   *time.Time                 `json:"earliest_expiry,omitempty"`
	IsAnyExpired     bool                       `json:"is_any_expired"`
	Sources          []*creditgrant.CreditGrant `json:"sources"`
}

// CustomerCreditSummary is the customer-level rollup across all
// non-expired grants.
type CustomerCreditSummary struct {
	CustomerID       string `json:"customer_id"`
	ActivePackages   int    `json:"active_packages"`
	TotalCredits     int    `json:"total_credits"`
	RemainingCredits int    `json:"remaining_credits"`
	UsedCredits      int    `json:"used_credits"`
}

// CustomerCreditsResponse returns both the raw grants and the
// aggregated per-service rows.
type CustomerCreditsResponse struct {
	Grants   []*creditgrant.CreditGrant `json:"grants"`
	Services []*AggregatedServiceCredit `json:"services"`
}

// ConsumeCreditRequest is the consumption collaborator API payload.
type ConsumeCreditRequest struct {
	CustomerID  string `json:"customer_id" validate:"required"`
	ServiceName string `json:"service_name" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required"`
}

// Validate validates the consume credit request
func (r *ConsumeCreditRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Quantity <= 0 {
		return ierr.NewError("quantity must be greater than zero").
			WithHint("Quantity must be a positive number of credits").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ConsumeCreditResponse reports the remaining balance for the service
// after consumption.
type ConsumeCreditResponse struct {
	ServiceName      string `json:"service_name"`
	RemainingCredits int    `json:"remaining_credits"`
}

// ExpireGrantsResponse reports the expiry sweep result.
type ExpireGrantsResponse struct {
	ExpiredCount int `json:"expired_count"`
}
