package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ActivateParams carries the confirmation details applied when a
// purchase transitions from pending_payment to active. The confirmed
// amount is authoritative and may differ from the amount recorded at
// sale time.
type ActivateParams struct {
	ConfirmedAmount decimal.Decimal
	PaymentLabel    string
	ReceiptNumber   *string
	Note            string
	ConfirmedAt     time.Time
	UpdatedBy       string
}

// Repository defines the interface for pending purchase persistence operations
type Repository interface {
	// Create creates a new pending purchase
	Create(ctx context.Context, p *PendingPurchase) error

	// Get retrieves a purchase by ID
	Get(ctx context.Context, id string) (*PendingPurchase, error)

	// GetByExternalInvoiceID resolves a purchase from the gateway's
	// invoice identifier (webhook confirmation path)
	GetByExternalInvoiceID(ctx context.Context, externalInvoiceID string) (*PendingPurchase, error)

	// ListActionableByCustomer retrieves the customer's purchases that
	// satisfy the actionable-pending predicate (payment_status pending
	// AND purchase_status pending_payment)
	ListActionableByCustomer(ctx context.Context, customerID string) ([]*PendingPurchase, error)

	// SetExternalInvoice stores the gateway invoice id and hosted URL
	// on the purchase without changing its status
	SetExternalInvoice(ctx context.Context, id, externalInvoiceID, externalInvoiceURL string) error

	// Activate conditionally transitions the purchase to active. The
	// update is keyed on the current status being pending_payment and
	// fails with ErrInvalidOperation otherwise, making activation
	// at-most-once regardless of concurrent confirmation attempts.
	Activate(ctx context.Context, id string, params ActivateParams) (*PendingPurchase, error)
}
