package testutil

import (
	"context"

	"github.com/paper-indonesia/circe-credits/internal/domain/purchase"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// InMemoryPurchaseStore implements purchase.Repository
type InMemoryPurchaseStore struct {
	*InMemoryStore[*purchase.PendingPurchase]
}

// NewInMemoryPurchaseStore creates a new in-memory purchase store
func NewInMemoryPurchaseStore() *InMemoryPurchaseStore {
	return &InMemoryPurchaseStore{
		InMemoryStore: NewInMemoryStore[*purchase.PendingPurchase](),
	}
}

func copyPurchase(p *purchase.PendingPurchase) *purchase.PendingPurchase {
	if p == nil {
		return nil
	}
	copied := *p
	if p.Services != nil {
		copied.Services = append([]purchase.ServiceLine(nil), p.Services...)
	}
	if p.ExternalInvoiceID != nil {
		v := *p.ExternalInvoiceID
		copied.ExternalInvoiceID = &v
	}
	if p.ExternalInvoiceURL != nil {
		v := *p.ExternalInvoiceURL
		copied.ExternalInvoiceURL = &v
	}
	if p.ConfirmedAt != nil {
		v := *p.ConfirmedAt
		copied.ConfirmedAt = &v
	}
	if p.ConfirmedAmount != nil {
		v := *p.ConfirmedAmount
		copied.ConfirmedAmount = &v
	}
	if p.ReceiptNumber != nil {
		v := *p.ReceiptNumber
		copied.ReceiptNumber = &v
	}
	return &copied
}

func (s *InMemoryPurchaseStore) Create(ctx context.Context, p *purchase.PendingPurchase) error {
	if p == nil {
		return ierr.NewError("purchase cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPurchase(p))
}

func (s *InMemoryPurchaseStore) Get(ctx context.Context, id string) (*purchase.PendingPurchase, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("purchase %s not found", id).
			WithHint("Purchase not found").
			Mark(ierr.ErrNotFound)
	}
	return copyPurchase(p), nil
}

func (s *InMemoryPurchaseStore) GetByExternalInvoiceID(ctx context.Context, externalInvoiceID string) (*purchase.PendingPurchase, error) {
	matches, err := s.InMemoryStore.List(ctx, func(ctx context.Context, p *purchase.PendingPurchase) bool {
		return p.ExternalInvoiceID != nil && *p.ExternalInvoiceID == externalInvoiceID
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewErrorf("no purchase found for invoice %s", externalInvoiceID).
			WithHint("Purchase not found").
			Mark(ierr.ErrNotFound)
	}
	return copyPurchase(matches[0]), nil
}

func (s *InMemoryPurchaseStore) ListActionableByCustomer(ctx context.Context, customerID string) ([]*purchase.PendingPurchase, error) {
	filterFn := func(ctx context.Context, p *purchase.PendingPurchase) bool {
		return p.CustomerID == customerID &&
			p.Status == types.StatusPublished &&
			p.IsActionablePending()
	}
	sortFn := func(a, b *purchase.PendingPurchase) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}

	purchases, err := s.InMemoryStore.List(ctx, filterFn, sortFn)
	if err != nil {
		return nil, err
	}
	result := make([]*purchase.PendingPurchase, 0, len(purchases))
	for _, p := range purchases {
		result = append(result, copyPurchase(p))
	}
	return result, nil
}

func (s *InMemoryPurchaseStore) SetExternalInvoice(ctx context.Context, id, externalInvoiceID, externalInvoiceURL string) error {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := copyPurchase(p)
	updated.ExternalInvoiceID = &externalInvoiceID
	updated.ExternalInvoiceURL = &externalInvoiceURL
	return s.InMemoryStore.Update(ctx, id, updated)
}

// Activate mirrors the conditional update of the SQL repository: the
// transition only succeeds while the purchase is still pending_payment.
func (s *InMemoryPurchaseStore) Activate(ctx context.Context, id string, params purchase.ActivateParams) (*purchase.PendingPurchase, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("purchase %s not found", id).
			WithHint("Purchase not found").
			Mark(ierr.ErrNotFound)
	}

	if p.PurchaseStatus != types.PurchaseStatusPendingPayment {
		return nil, ierr.NewErrorf("purchase %s is not awaiting payment", id).
			WithHint("Payment for this purchase has already been confirmed").
			Mark(ierr.ErrInvalidOperation)
	}

	updated := copyPurchase(p)
	updated.PaymentStatus = types.PaymentStatusPaid
	updated.PurchaseStatus = types.PurchaseStatusActive
	updated.PaymentLabel = params.PaymentLabel
	confirmedAmount := params.ConfirmedAmount
	updated.ConfirmedAmount = &confirmedAmount
	confirmedAt := params.ConfirmedAt
	updated.ConfirmedAt = &confirmedAt
	updated.ConfirmationNote = params.Note
	updated.ReceiptNumber = params.ReceiptNumber
	updated.UpdatedAt = params.ConfirmedAt
	updated.UpdatedBy = params.UpdatedBy

	if err := s.InMemoryStore.Update(ctx, id, updated); err != nil {
		return nil, err
	}
	return copyPurchase(updated), nil
}
