package purchase

import (
	"time"

	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/shopspring/decimal"
)

// ServiceLine is one service included in a purchased package, with the
// credits allocated to it and an optional validity window.
type ServiceLine struct {
	ServiceName string     `json:"service_name"`
	Credits     int        `json:"credits"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// PendingPurchase is a package sale recorded before payment is
// confirmed. It transitions to active exactly once and never regresses.
type PendingPurchase struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	PackageName string `json:"package_name"`

	// AmountPaid is kept as received; upstream transmits it
	// inconsistently as a number or a decimal string. Use
	// NormalizedAmount before any arithmetic or display.
	AmountPaid string `json:"amount_paid"`

	PaymentMethod  types.PaymentMethodType `json:"payment_method"`
	PaymentStatus  types.PaymentStatus     `json:"payment_status"`
	PurchaseStatus types.PurchaseStatus    `json:"purchase_status"`

	TotalCredits int           `json:"total_credits"`
	Services     []ServiceLine `json:"services,omitempty"`

	ExternalInvoiceID  *string `json:"external_invoice_id,omitempty"`
	ExternalInvoiceURL *string `json:"external_invoice_url,omitempty"`

	// PaymentLabel is the canonical label the settlement is recorded
	// under once confirmed (pay_on_visit settles as "cash").
	PaymentLabel string `json:"payment_label,omitempty"`

	ConfirmedAt      *time.Time       `json:"confirmed_at,omitempty"`
	ConfirmedAmount  *decimal.Decimal `json:"confirmed_amount,omitempty"`
	ConfirmationNote string           `json:"confirmation_note,omitempty"`
	ReceiptNumber    *string          `json:"receipt_number,omitempty"`
	Notes            string           `json:"notes,omitempty"`

	types.BaseModel
}

// Validate validates the purchase
func (p *PendingPurchase) Validate() error {
	if p.CustomerID == "" {
		return ierr.NewError("customer_id is required").Mark(ierr.ErrValidation)
	}
	if p.PackageName == "" {
		return ierr.NewError("package_name is required").Mark(ierr.ErrValidation)
	}
	if err := p.PaymentMethod.Validate(); err != nil {
		return err
	}
	if p.TotalCredits <= 0 {
		return ierr.NewError("total_credits must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	var lineTotal int
	for _, line := range p.Services {
		if line.ServiceName == "" {
			return ierr.NewError("service_name is required on every service line").
				Mark(ierr.ErrValidation)
		}
		if line.Credits <= 0 {
			return ierr.NewError("service line credits must be greater than zero").
				Mark(ierr.ErrValidation)
		}
		lineTotal += line.Credits
	}
	if len(p.Services) > 0 && lineTotal != p.TotalCredits {
		return ierr.NewError("service line credits do not sum to total_credits").
			WithReportableDetails(map[string]interface{}{
				"total_credits": p.TotalCredits,
				"line_total":    lineTotal,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsActionablePending reports whether the purchase is provably awaiting
// resolution. Both statuses are checked to tolerate the window where
// the gateway has recorded paid before the local status catches up; a
// paid payment_status alone never authorizes showing credits as usable.
func (p *PendingPurchase) IsActionablePending() bool {
	return p.PaymentStatus == types.PaymentStatusPending &&
		p.PurchaseStatus == types.PurchaseStatusPendingPayment
}

// NormalizedAmount parses AmountPaid, falling back to zero on an
// unparsable value. The second return value is false on fallback so the
// caller can log the inconsistency.
func (p *PendingPurchase) NormalizedAmount() (decimal.Decimal, bool) {
	return types.ParseAmount(p.AmountPaid)
}

// ServiceLines returns the package's service breakdown. A purchase
// recorded without an explicit breakdown grants all credits under the
// package name.
func (p *PendingPurchase) ServiceLines() []ServiceLine {
	if len(p.Services) > 0 {
		return p.Services
	}
	return []ServiceLine{{ServiceName: p.PackageName, Credits: p.TotalCredits}}
}
