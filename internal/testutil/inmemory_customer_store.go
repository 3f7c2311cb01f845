package testutil

import (
	"context"

	"github.com/paper-indonesia/circe-credits/internal/domain/customer"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

// NewInMemoryCustomerStore creates a new in-memory customer store
func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func copyCustomer(c *customer.Customer) *customer.Customer {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	if c == nil {
		return ierr.NewError("customer cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, copyCustomer(c))
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("customer %s not found", id).
			WithHint("Customer not found").
			Mark(ierr.ErrNotFound)
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) List(ctx context.Context, filter *types.QueryFilter) ([]*customer.Customer, error) {
	sortFn := func(a, b *customer.Customer) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	customers, err := s.InMemoryStore.List(ctx, func(ctx context.Context, c *customer.Customer) bool {
		return c.Status == types.StatusPublished
	}, sortFn)
	if err != nil {
		return nil, err
	}

	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset >= len(customers) {
		return []*customer.Customer{}, nil
	}
	end := offset + limit
	if end > len(customers) {
		end = len(customers)
	}

	result := make([]*customer.Customer, 0, end-offset)
	for _, c := range customers[offset:end] {
		result = append(result, copyCustomer(c))
	}
	return result, nil
}
