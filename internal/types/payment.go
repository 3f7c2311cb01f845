package types

import (
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
)

// PaymentMethodType identifies how a package purchase is settled.
type PaymentMethodType string

const (
	PaymentMethodBankTransfer PaymentMethodType = "bank_transfer"
	PaymentMethodPayOnVisit   PaymentMethodType = "pay_on_visit"
	PaymentMethodPaperDigital PaymentMethodType = "paper_digital"
)

// Validate checks the method is one of the supported values.
func (m PaymentMethodType) Validate() error {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodPayOnVisit, PaymentMethodPaperDigital:
		return nil
	default:
		return ierr.NewErrorf("unsupported payment method: %s", m).
			WithHint("Payment method must be one of: bank_transfer, pay_on_visit, paper_digital").
			Mark(ierr.ErrValidation)
	}
}

// CanonicalLabel returns the label the method is recorded under
// downstream. Pay-on-visit settles in cash at the outlet and is
// recorded as "cash".
func (m PaymentMethodType) CanonicalLabel() string {
	if m == PaymentMethodPayOnVisit {
		return "cash"
	}
	return string(m)
}

// PaymentStatus is the gateway-reported settlement status of a purchase.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PurchaseStatus is the local lifecycle status of a purchase.
type PurchaseStatus string

const (
	PurchaseStatusPendingPayment PurchaseStatus = "pending_payment"
	PurchaseStatusActive         PurchaseStatus = "active"
)

// PaymentPath is a closed union over the two confirmation paths. Only
// ManualPath purchases can be confirmed directly; only
// ExternalInvoicePath purchases can have a hosted invoice issued.
// PaymentPathFor is the sole constructor.
type PaymentPath interface {
	isPaymentPath()
}

// ManualPath covers methods confirmed by staff: cash on visit and
// bank transfer.
type ManualPath struct {
	Method PaymentMethodType
}

func (ManualPath) isPaymentPath() {}

// ConfirmationNote returns the note text recorded when the purchase is
// confirmed. The phrasing distinguishes the two manual methods; the
// effect is identical.
func (p ManualPath) ConfirmationNote() string {
	if p.Method == PaymentMethodPayOnVisit {
		return "Payment received on visit (cash)"
	}
	return "Payment received via bank transfer"
}

// ExternalInvoicePath covers paper_digital purchases settled through a
// hosted invoice issued by the billing gateway.
type ExternalInvoicePath struct{}

func (ExternalInvoicePath) isPaymentPath() {}

// PaymentPathFor resolves a payment method to its confirmation path.
func PaymentPathFor(m PaymentMethodType) (PaymentPath, error) {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodPayOnVisit:
		return ManualPath{Method: m}, nil
	case PaymentMethodPaperDigital:
		return ExternalInvoicePath{}, nil
	default:
		return nil, ierr.NewErrorf("unsupported payment method: %s", m).
			WithHint("Payment method must be one of: bank_transfer, pay_on_visit, paper_digital").
			Mark(ierr.ErrValidation)
	}
}
