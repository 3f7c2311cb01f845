package service

import (
	"context"
	"sort"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/api/dto"
	"github.com/paper-indonesia/circe-credits/internal/cache"
	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/samber/lo"
)

// CreditGrantService exposes the customer-facing credit balance views
// and the consumption API used by the booking system.
type CreditGrantService interface {
	// GetCustomerCredits returns the customer's grants together with
	// the aggregated per-service balances
	GetCustomerCredits(ctx context.Context, customerID string, includeExpired bool) (*dto.CustomerCreditsResponse, error)

	// GetCustomerCreditSummary returns the customer-level credit totals
	GetCustomerCreditSummary(ctx context.Context, customerID string) (*dto.CustomerCreditSummary, error)

	// ConsumeCredit decrements credits from one grant chosen by the
	// allocation policy and returns the remaining service balance
	ConsumeCredit(ctx context.Context, req *dto.ConsumeCreditRequest) (*dto.ConsumeCreditResponse, error)

	// ExpireDueGrants marks grants whose expiry has passed. Invoked by
	// the scheduled sweep.
	ExpireDueGrants(ctx context.Context) (*dto.ExpireGrantsResponse, error)
}

type creditGrantService struct {
	ServiceParams
}

func NewCreditGrantService(params ServiceParams) CreditGrantService {
	return &creditGrantService{ServiceParams: params}
}

// AggregateServiceCredits folds a customer's grants into one row per
// service name, in first-seen order. Expired grants never contribute to
// totals; they only raise the is_any_expired caution flag on services
// that still have active grants. A service whose grants are all expired
// produces no row.
//
// Expiry display follows no-expiry dominance: one grant without an
// expiry makes the whole service "no expiry", and earliest_expiry is
// suppressed. A customer holding any perpetual credits for a service is
// never shown urgency language.
func AggregateServiceCredits(grants []*creditgrant.CreditGrant) []*dto.AggregatedServiceCredit {
	byService := make(map[string]*dto.AggregatedServiceCredit)
	order := make([]string, 0)

	for _, grant := range grants {
		if grant.Status != types.StatusPublished || grant.IsExpired {
			continue
		}
		row, ok := byService[grant.ServiceName]
		if !ok {
			row = &dto.AggregatedServiceCredit{ServiceName: grant.ServiceName}
			byService[grant.ServiceName] = row
			order = append(order, grant.ServiceName)
		}
		row.TotalCredits += grant.TotalCredits
		row.RemainingCredits += grant.RemainingCredits
		row.UsedCredits += grant.UsedCredits
		row.Sources = append(row.Sources, grant)

		if grant.ExpiresAt == nil {
			row.HasNoExpiry = true
			row.EarliestExpiry = nil
		} else if !row.HasNoExpiry {
			if row.EarliestExpiry == nil || grant.ExpiresAt.Before(*row.EarliestExpiry) {
				expiry := *grant.ExpiresAt
				row.EarliestExpiry = &expiry
			}
		}
	}

	// Second pass: expired grants flag services that still appear.
	for _, grant := range grants {
		if grant.Status != types.StatusPublished || !grant.IsExpired {
			continue
		}
		if row, ok := byService[grant.ServiceName]; ok {
			row.IsAnyExpired = true
		}
	}

	result := make([]*dto.AggregatedServiceCredit, 0, len(order))
	for _, name := range order {
		result = append(result, byService[name])
	}
	return result
}

// SummarizeCustomerCredits computes the customer-level rollup. Active
// packages counts distinct purchase provenances among non-expired
// grants; the credit totals are straight sums.
func SummarizeCustomerCredits(customerID string, grants []*creditgrant.CreditGrant) *dto.CustomerCreditSummary {
	summary := &dto.CustomerCreditSummary{CustomerID: customerID}
	purchases := make(map[string]struct{})

	for _, grant := range grants {
		if !grant.IsActive() {
			continue
		}
		purchases[grant.PurchaseID] = struct{}{}
		summary.TotalCredits += grant.TotalCredits
		summary.RemainingCredits += grant.RemainingCredits
		summary.UsedCredits += grant.UsedCredits
	}
	summary.ActivePackages = len(purchases)
	return summary
}

func (s *creditGrantService) GetCustomerCredits(ctx context.Context, customerID string, includeExpired bool) (*dto.CustomerCreditsResponse, error) {
	if customerID == "" {
		return nil, ierr.NewError("customer_id is required").
			Mark(ierr.ErrValidation)
	}

	// Aggregation always sees the full set: expired grants never count
	// toward totals, but they must still raise the is_any_expired flag
	// on the default view. The includeExpired toggle only controls
	// which raw grants are returned.
	grants, err := s.CreditGrantRepo.ListByCustomer(ctx, customerID, true)
	if err != nil {
		return nil, err
	}

	visible := grants
	if !includeExpired {
		visible = lo.Filter(grants, func(g *creditgrant.CreditGrant, _ int) bool {
			return !g.IsExpired
		})
	}

	return &dto.CustomerCreditsResponse{
		Grants:   visible,
		Services: AggregateServiceCredits(grants),
	}, nil
}

func (s *creditGrantService) GetCustomerCreditSummary(ctx context.Context, customerID string) (*dto.CustomerCreditSummary, error) {
	if customerID == "" {
		return nil, ierr.NewError("customer_id is required").
			Mark(ierr.ErrValidation)
	}

	key := cache.SummaryKey(types.GetTenantID(ctx), customerID)
	if cached, ok := s.SummaryCache.Get(key); ok {
		if summary, ok := cached.(*dto.CustomerCreditSummary); ok {
			return summary, nil
		}
	}

	grants, err := s.CreditGrantRepo.ListByCustomer(ctx, customerID, false)
	if err != nil {
		return nil, err
	}

	summary := SummarizeCustomerCredits(customerID, grants)
	s.SummaryCache.Set(key, summary, cache.SummaryTTL)
	return summary, nil
}

func (s *creditGrantService) ConsumeCredit(ctx context.Context, req *dto.ConsumeCreditRequest) (*dto.ConsumeCreditResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	grants, err := s.CreditGrantRepo.ListByCustomer(ctx, req.CustomerID, false)
	if err != nil {
		return nil, err
	}

	candidates := make([]*creditgrant.CreditGrant, 0)
	remaining := 0
	for _, grant := range grants {
		if grant.ServiceName != req.ServiceName || !grant.IsActive() {
			continue
		}
		remaining += grant.RemainingCredits
		if grant.RemainingCredits > 0 {
			candidates = append(candidates, grant)
		}
	}

	if remaining < req.Quantity {
		return nil, ierr.NewError("insufficient remaining credits").
			WithHintf("Customer has %d remaining credits for %s", remaining, req.ServiceName).
			WithReportableDetails(map[string]interface{}{
				"service_name": req.ServiceName,
				"remaining":    remaining,
				"requested":    req.Quantity,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	sortByAllocationOrder(candidates)

	// One consumption event decrements exactly one grant. The policy
	// picks the first batch (earliest expiry first) that can cover the
	// quantity on its own.
	var target *creditgrant.CreditGrant
	for _, grant := range candidates {
		if grant.RemainingCredits >= req.Quantity {
			target = grant
			break
		}
	}
	if target == nil {
		return nil, ierr.NewError("no single credit batch covers the requested quantity").
			WithHint("Consume in smaller quantities").
			WithReportableDetails(map[string]interface{}{
				"service_name": req.ServiceName,
				"requested":    req.Quantity,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	consumed := target.Consume(req.Quantity)
	target.UpdatedBy = types.GetUserID(ctx)
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := s.CreditGrantRepo.Update(ctx, target); err != nil {
		return nil, err
	}

	s.SummaryCache.Delete(cache.SummaryKey(types.GetTenantID(ctx), req.CustomerID))

	s.Logger.Infow("consumed credits",
		"customer_id", req.CustomerID,
		"service_name", req.ServiceName,
		"grant_id", target.ID,
		"consumed", consumed)

	return &dto.ConsumeCreditResponse{
		ServiceName:      req.ServiceName,
		RemainingCredits: remaining - consumed,
	}, nil
}

// sortByAllocationOrder orders grants for consumption: expiring batches
// first by earliest expiry, perpetual batches last, ties broken by
// creation time then ID so the order is deterministic.
func sortByAllocationOrder(grants []*creditgrant.CreditGrant) {
	sort.SliceStable(grants, func(i, j int) bool {
		a, b := grants[i], grants[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt != nil:
			return false
		case a.ExpiresAt != nil && b.ExpiresAt == nil:
			return true
		case a.ExpiresAt != nil && b.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ID < b.ID
		}
	})
}

func (s *creditGrantService) ExpireDueGrants(ctx context.Context) (*dto.ExpireGrantsResponse, error) {
	count, err := s.CreditGrantRepo.MarkExpired(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if count > 0 {
		// Cached summaries may include newly expired grants.
		s.SummaryCache.Flush()
		s.Logger.Infow("marked credit grants as expired", "count", count)
	}

	return &dto.ExpireGrantsResponse{ExpiredCount: count}, nil
}
