package testutil

import (
	"context"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// InMemoryCreditGrantStore implements creditgrant.Repository
type InMemoryCreditGrantStore struct {
	*InMemoryStore[*creditgrant.CreditGrant]
}

// NewInMemoryCreditGrantStore creates a new in-memory credit grant store
func NewInMemoryCreditGrantStore() *InMemoryCreditGrantStore {
	return &InMemoryCreditGrantStore{
		InMemoryStore: NewInMemoryStore[*creditgrant.CreditGrant](),
	}
}

func copyCreditGrant(g *creditgrant.CreditGrant) *creditgrant.CreditGrant {
	if g == nil {
		return nil
	}
	copied := *g
	if g.ExpiresAt != nil {
		expiresAt := *g.ExpiresAt
		copied.ExpiresAt = &expiresAt
	}
	return &copied
}

func (s *InMemoryCreditGrantStore) Create(ctx context.Context, grant *creditgrant.CreditGrant) error {
	if grant == nil {
		return ierr.NewError("credit grant cannot be nil").
			Mark(ierr.ErrValidation)
	}
	err := s.InMemoryStore.Create(ctx, grant.ID, copyCreditGrant(grant))
	if err != nil {
		// Deterministic IDs make re-creation a no-op, mirroring the
		// ON CONFLICT DO NOTHING insert.
		if ierr.IsAlreadyExists(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *InMemoryCreditGrantStore) CreateBulk(ctx context.Context, grants []*creditgrant.CreditGrant) error {
	for _, grant := range grants {
		if err := s.Create(ctx, grant); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryCreditGrantStore) Get(ctx context.Context, id string) (*creditgrant.CreditGrant, error) {
	grant, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyCreditGrant(grant), nil
}

func (s *InMemoryCreditGrantStore) ListByCustomer(ctx context.Context, customerID string, includeExpired bool) ([]*creditgrant.CreditGrant, error) {
	filterFn := func(ctx context.Context, g *creditgrant.CreditGrant) bool {
		if g.CustomerID != customerID || g.Status != types.StatusPublished {
			return false
		}
		if !includeExpired && g.IsExpired {
			return false
		}
		return true
	}
	sortFn := func(a, b *creditgrant.CreditGrant) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}

	grants, err := s.InMemoryStore.List(ctx, filterFn, sortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*creditgrant.CreditGrant, 0, len(grants))
	for _, g := range grants {
		result = append(result, copyCreditGrant(g))
	}
	return result, nil
}

func (s *InMemoryCreditGrantStore) Update(ctx context.Context, grant *creditgrant.CreditGrant) error {
	if grant == nil {
		return ierr.NewError("credit grant cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, grant.ID, copyCreditGrant(grant))
}

func (s *InMemoryCreditGrantStore) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	grants, err := s.InMemoryStore.List(ctx, nil, nil)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, g := range grants {
		if g.IsExpired || g.ExpiresAt == nil || g.ExpiresAt.After(now) {
			continue
		}
		updated := copyCreditGrant(g)
		updated.IsExpired = true
		updated.UpdatedAt = now
		if err := s.InMemoryStore.Update(ctx, updated.ID, updated); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
