package dto

import (
	"context"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/domain/purchase"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/shopspring/decimal"
)

// ServiceLineRequest is one service entry of a purchased package.
type ServiceLineRequest struct {
	ServiceName string     `json:"service_name" validate:"required"`
	Credits     int        `json:"credits" validate:"required,gt=0"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CreatePurchaseRequest records a package sale before payment.
type CreatePurchaseRequest struct {
	CustomerID    string                  `json:"customer_id" validate:"required"`
	PackageName   string                  `json:"package_name" validate:"required"`
	AmountPaid    types.AmountString      `json:"amount_paid"`
	PaymentMethod types.PaymentMethodType `json:"payment_method" validate:"required"`
	TotalCredits  int                     `json:"total_credits" validate:"required,gt=0"`
	Services      []ServiceLineRequest    `json:"services,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
}

// Validate validates the create purchase request
func (r *CreatePurchaseRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	return r.PaymentMethod.Validate()
}

// ToPendingPurchase converts the request to a purchase domain model
func (r *CreatePurchaseRequest) ToPendingPurchase(ctx context.Context) *purchase.PendingPurchase {
	services := make([]purchase.ServiceLine, 0, len(r.Services))
	for _, line := range r.Services {
		services = append(services, purchase.ServiceLine{
			ServiceName: line.ServiceName,
			Credits:     line.Credits,
			ExpiresAt:   line.ExpiresAt,
		})
	}
	return &purchase.PendingPurchase{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PURCHASE),
		CustomerID:     r.CustomerID,
		PackageName:    r.PackageName,
		AmountPaid:     r.AmountPaid.String(),
		PaymentMethod:  r.PaymentMethod,
		PaymentStatus:  types.PaymentStatusPending,
		PurchaseStatus: types.PurchaseStatusPendingPayment,
		TotalCredits:   r.TotalCredits,
		Services:       services,
		Notes:          r.Notes,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

// ConfirmPaymentRequest confirms a manual-path purchase. The amount is
// the authoritative amount received, supplied by the confirming party.
type ConfirmPaymentRequest struct {
	Amount        decimal.Decimal         `json:"amount"`
	PaymentMethod types.PaymentMethodType `json:"payment_method" validate:"required"`
	ReceiptNumber *string                 `json:"receipt_number,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
}

// Validate validates the confirm payment request. Only methods on the
// manual confirmation path are accepted.
func (r *ConfirmPaymentRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be greater than zero").
			WithHint("Confirmed amount must be a positive value").
			WithReportableDetails(map[string]interface{}{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	path, err := types.PaymentPathFor(r.PaymentMethod)
	if err != nil {
		return err
	}
	if _, ok := path.(types.ManualPath); !ok {
		return ierr.NewErrorf("payment method %s cannot be confirmed manually", r.PaymentMethod).
			WithHint("Only bank_transfer and pay_on_visit purchases can be confirmed directly").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IssueInvoiceRequest requests a hosted invoice for a paper_digital
// purchase. At least one notification channel must be selected.
type IssueInvoiceRequest struct {
	DueDate      *time.Time `json:"due_date" validate:"required"`
	Notes        string     `json:"notes,omitempty"`
	SendEmail    bool       `json:"send_email"`
	SendWhatsapp bool       `json:"send_whatsapp"`
	SendSms      bool       `json:"send_sms"`
}

// Validate validates the issue invoice request
func (r *IssueInvoiceRequest) Validate() error {
	if r.DueDate == nil {
		return ierr.NewError("due_date is required").
			WithHint("Invoice due date is required").
			Mark(ierr.ErrValidation)
	}
	if !r.SendEmail && !r.SendWhatsapp && !r.SendSms {
		return ierr.NewError("no notification channel selected").
			WithHint("Select at least one of email, whatsapp or sms").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IssueInvoiceResponse returns the hosted payment link. AlreadyIssued
// is set when the purchase already had an invoice and the existing URL
// is returned instead of re-issuing.
type IssueInvoiceResponse struct {
	InvoiceURL    string `json:"invoice_url"`
	AlreadyIssued bool   `json:"already_issued"`
}

// PurchaseResponse is the wire representation of a purchase, with the
// amount normalized to a number.
type PurchaseResponse struct {
	*purchase.PendingPurchase
	Amount decimal.Decimal `json:"amount"`
}

// NewPurchaseResponse builds a purchase response, normalizing the raw
// amount with fallback to zero.
func NewPurchaseResponse(p *purchase.PendingPurchase) *PurchaseResponse {
	amount, _ := p.NormalizedAmount()
	return &PurchaseResponse{PendingPurchase: p, Amount: amount}
}

// ListPurchasesResponse lists purchases for a customer.
type ListPurchasesResponse struct {
	Items []*PurchaseResponse `json:"items"`
	Total int                 `json:"total"`
}
