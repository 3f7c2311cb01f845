package creditgrant

import (
	"time"

	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// CreditGrant is the allocation of N usable service credits arising
// from one package purchase, for one service. Grants are created
// atomically when a pending purchase is confirmed, mutated only by
// credit consumption, and never deleted. Expiry marks them instead.
type CreditGrant struct {
	ID               string     `json:"id"`
	CustomerID       string     `json:"customer_id"`
	PurchaseID       string     `json:"purchase_id"`
	ServiceName      string     `json:"service_name"`
	TotalCredits     int        `json:"total_credits"`
	RemainingCredits int        `json:"remaining_credits"`
	UsedCredits      int        `json:"used_credits"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	IsExpired        bool       `json:"is_expired"`
	types.BaseModel
}

// Validate enforces the conservation invariant:
// used + remaining == total, all non-negative, remaining <= total.
func (g *CreditGrant) Validate() error {
	if g.CustomerID == "" {
		return ierr.NewError("customer_id is required").Mark(ierr.ErrValidation)
	}
	if g.ServiceName == "" {
		return ierr.NewError("service_name is required").Mark(ierr.ErrValidation)
	}
	if g.TotalCredits < 0 || g.RemainingCredits < 0 || g.UsedCredits < 0 {
		return ierr.NewError("credit counts must not be negative").
			WithReportableDetails(map[string]interface{}{
				"total":     g.TotalCredits,
				"remaining": g.RemainingCredits,
				"used":      g.UsedCredits,
			}).
			Mark(ierr.ErrValidation)
	}
	if g.UsedCredits+g.RemainingCredits != g.TotalCredits {
		return ierr.NewError("credit counts do not balance").
			WithHint("used_credits + remaining_credits must equal total_credits").
			WithReportableDetails(map[string]interface{}{
				"total":     g.TotalCredits,
				"remaining": g.RemainingCredits,
				"used":      g.UsedCredits,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsActive reports whether the grant contributes to balances. An
// expired grant is excluded even when it still has remaining credits.
func (g *CreditGrant) IsActive() bool {
	return !g.IsExpired && g.Status == types.StatusPublished
}

// Consume uses up to quantity credits from this grant and returns how
// many were actually consumed. The conservation invariant is preserved.
func (g *CreditGrant) Consume(quantity int) int {
	if quantity <= 0 || g.RemainingCredits <= 0 {
		return 0
	}
	consumed := quantity
	if consumed > g.RemainingCredits {
		consumed = g.RemainingCredits
	}
	g.RemainingCredits -= consumed
	g.UsedCredits += consumed
	g.UpdatedAt = time.Now().UTC()
	return consumed
}
