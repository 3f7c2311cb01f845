package creditgrant

import (
	"context"
	"time"
)

// Repository defines the interface for credit grant persistence operations
type Repository interface {
	// Create creates a new credit grant
	Create(ctx context.Context, grant *CreditGrant) error

	// CreateBulk creates all grants atomically. Used at purchase
	// activation so a package never materializes partially.
	CreateBulk(ctx context.Context, grants []*CreditGrant) error

	// Get retrieves a credit grant by ID
	Get(ctx context.Context, id string) (*CreditGrant, error)

	// ListByCustomer retrieves a customer's grants in creation order.
	// Expired grants are included only when includeExpired is set.
	ListByCustomer(ctx context.Context, customerID string, includeExpired bool) ([]*CreditGrant, error)

	// Update persists mutated credit counts on an existing grant
	Update(ctx context.Context, grant *CreditGrant) error

	// MarkExpired flags grants whose expiry has passed and returns the
	// number of grants affected
	MarkExpired(ctx context.Context, now time.Time) (int, error)
}
