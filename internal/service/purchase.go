package service

import (
	"context"
	"strings"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/api/dto"
	"github.com/paper-indonesia/circe-credits/internal/cache"
	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	"github.com/paper-indonesia/circe-credits/internal/domain/purchase"
	"github.com/paper-indonesia/circe-credits/internal/email"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/idempotency"
	"github.com/paper-indonesia/circe-credits/internal/integration/paperid"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/shopspring/decimal"
)

// PurchaseService drives the pending-payment reconciliation workflow:
// a recorded sale becomes active credit grants either through direct
// staff confirmation (cash on visit, bank transfer) or through a hosted
// invoice settled asynchronously by the billing gateway.
type PurchaseService interface {
	// CreatePurchase records a package sale awaiting payment
	CreatePurchase(ctx context.Context, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error)

	// GetPurchase retrieves a purchase by ID
	GetPurchase(ctx context.Context, id string) (*dto.PurchaseResponse, error)

	// ListActionablePending lists the customer's purchases that are
	// provably awaiting resolution
	ListActionablePending(ctx context.Context, customerID string) (*dto.ListPurchasesResponse, error)

	// ConfirmPayment confirms a manual-path purchase and materializes
	// its credit grants. At most one confirmation succeeds per purchase.
	ConfirmPayment(ctx context.Context, purchaseID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error)

	// IssueInvoice requests a hosted invoice for a paper_digital
	// purchase. If one was already issued, the existing URL is returned.
	IssueInvoice(ctx context.Context, purchaseID string, req *dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error)

	// ActivateFromGateway applies the activation effect when the
	// gateway reports an invoice as paid. Safe under redelivery.
	ActivateFromGateway(ctx context.Context, externalInvoiceID string, paidAmount types.AmountString) error
}

type purchaseService struct {
	ServiceParams
}

func NewPurchaseService(params ServiceParams) PurchaseService {
	return &purchaseService{ServiceParams: params}
}

func (s *purchaseService) CreatePurchase(ctx context.Context, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	p := req.ToPendingPurchase(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.PurchaseRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded pending purchase",
		"purchase_id", p.ID,
		"customer_id", p.CustomerID,
		"package_name", p.PackageName,
		"payment_method", p.PaymentMethod)

	return s.toResponse(p), nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	p, err := s.PurchaseRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(p), nil
}

func (s *purchaseService) ListActionablePending(ctx context.Context, customerID string) (*dto.ListPurchasesResponse, error) {
	if customerID == "" {
		return nil, ierr.NewError("customer_id is required").
			Mark(ierr.ErrValidation)
	}

	purchases, err := s.PurchaseRepo.ListActionableByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		items = append(items, s.toResponse(p))
	}
	return &dto.ListPurchasesResponse{Items: items, Total: len(items)}, nil
}

func (s *purchaseService) ConfirmPayment(ctx context.Context, purchaseID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PurchaseRepo.Get(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	// The purchase's own method must be on the manual path too; a
	// paper_digital purchase is only ever settled via its invoice.
	purchasePath, err := types.PaymentPathFor(p.PaymentMethod)
	if err != nil {
		return nil, err
	}
	manual, ok := purchasePath.(types.ManualPath)
	if !ok {
		return nil, ierr.NewErrorf("purchase %s uses digital invoicing", purchaseID).
			WithHint("This purchase is settled through its hosted invoice, not manual confirmation").
			Mark(ierr.ErrValidation)
	}

	note := manual.ConfirmationNote()
	if req.Notes != "" {
		note = note + ": " + req.Notes
	}

	// The confirming party supplies the authoritative amount; it may
	// correct a partial or short payment recorded at sale time.
	activated, err := s.PurchaseRepo.Activate(ctx, purchaseID, purchase.ActivateParams{
		ConfirmedAmount: req.Amount,
		PaymentLabel:    manual.Method.CanonicalLabel(),
		ReceiptNumber:   req.ReceiptNumber,
		Note:            note,
		ConfirmedAt:     time.Now().UTC(),
		UpdatedBy:       types.GetUserID(ctx),
	})
	if err != nil {
		return nil, err
	}

	if err := s.materializeGrants(ctx, activated); err != nil {
		return nil, err
	}

	s.Logger.Infow("confirmed purchase payment",
		"purchase_id", activated.ID,
		"customer_id", activated.CustomerID,
		"payment_label", manual.Method.CanonicalLabel(),
		"confirmed_amount", req.Amount.String())

	return s.toResponse(activated), nil
}

func (s *purchaseService) IssueInvoice(ctx context.Context, purchaseID string, req *dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PurchaseRepo.Get(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	path, err := types.PaymentPathFor(p.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if _, ok := path.(types.ExternalInvoicePath); !ok {
		return nil, ierr.NewErrorf("purchase %s is not on the digital invoicing path", purchaseID).
			WithHint("Invoices can only be issued for paper_digital purchases").
			Mark(ierr.ErrValidation)
	}

	if p.PurchaseStatus != types.PurchaseStatusPendingPayment {
		return nil, ierr.NewError("purchase is not awaiting payment").
			WithHint("Only pending purchases can be invoiced").
			Mark(ierr.ErrInvalidOperation)
	}

	// Re-issuing is not offered once a hosted invoice exists; expose
	// the existing link instead.
	if p.ExternalInvoiceURL != nil && *p.ExternalInvoiceURL != "" {
		return &dto.IssueInvoiceResponse{
			InvoiceURL:    *p.ExternalInvoiceURL,
			AlreadyIssued: true,
		}, nil
	}

	cust, err := s.CustomerRepo.Get(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}

	amount := s.normalizedAmount(ctx, p)

	invoice, err := s.PaperClient.CreateInvoice(ctx, &paperid.CreateInvoiceRequest{
		ExternalID:    p.ID,
		CustomerName:  cust.Name,
		CustomerEmail: cust.Email,
		CustomerPhone: cust.PhoneNumber,
		Description:   p.PackageName,
		Amount:        amount,
		Currency:      "IDR",
		DueDate:       *req.DueDate,
		Notes:         req.Notes,
		Channels: paperid.InvoiceChannels{
			Email:    req.SendEmail,
			Whatsapp: req.SendWhatsapp,
			Sms:      req.SendSms,
		},
	})
	if err != nil {
		// Nothing was persisted locally; the caller can retry safely.
		return nil, err
	}

	if err := s.PurchaseRepo.SetExternalInvoice(ctx, p.ID, invoice.ID, invoice.URL); err != nil {
		s.Logger.Errorw("invoice created at gateway but could not be stored",
			"purchase_id", p.ID,
			"invoice_id", invoice.ID,
			"error", err)
		return nil, err
	}

	if req.SendEmail && cust.Email != "" {
		// Best effort; invoice issuance does not depend on email.
		if err := s.EmailSender.SendInvoiceIssued(ctx, email.InvoiceEmailRequest{
			ToAddress:    cust.Email,
			CustomerName: cust.Name,
			PackageName:  p.PackageName,
			Amount:       amount,
			DueDate:      *req.DueDate,
			InvoiceURL:   invoice.URL,
		}); err != nil {
			s.Logger.Warnw("failed to email invoice link",
				"purchase_id", p.ID,
				"error", err)
		}
	}

	s.Logger.Infow("issued hosted invoice",
		"purchase_id", p.ID,
		"invoice_id", invoice.ID,
		"due_date", req.DueDate)

	return &dto.IssueInvoiceResponse{InvoiceURL: invoice.URL}, nil
}

func (s *purchaseService) ActivateFromGateway(ctx context.Context, externalInvoiceID string, paidAmount types.AmountString) error {
	p, err := s.PurchaseRepo.GetByExternalInvoiceID(ctx, externalInvoiceID)
	if err != nil {
		return err
	}

	// Gateway deliveries carry no tenant header; the purchase row is
	// authoritative for the tenant the activation runs under.
	ctx = types.SetTenantID(ctx, p.TenantID)

	amount, ok := types.ParseAmount(paidAmount.String())
	if !ok {
		s.Logger.Warnw("gateway paid amount is not a valid decimal, falling back to recorded amount",
			"purchase_id", p.ID,
			"paid_amount", paidAmount.String())
		amount = s.normalizedAmount(ctx, p)
	}

	activated, err := s.PurchaseRepo.Activate(ctx, p.ID, purchase.ActivateParams{
		ConfirmedAmount: amount,
		PaymentLabel:    p.PaymentMethod.CanonicalLabel(),
		Note:            "Paid via digital invoice",
		ConfirmedAt:     time.Now().UTC(),
	})
	if err != nil {
		if ierr.IsInvalidOperation(err) {
			// Webhook redelivery after activation; ack without effect.
			s.Logger.Infow("purchase already active, ignoring gateway confirmation",
				"purchase_id", p.ID,
				"external_invoice_id", externalInvoiceID)
			return nil
		}
		return err
	}

	if err := s.materializeGrants(ctx, activated); err != nil {
		return err
	}

	s.Logger.Infow("activated purchase from gateway confirmation",
		"purchase_id", activated.ID,
		"external_invoice_id", externalInvoiceID)
	return nil
}

// materializeGrants creates the purchase's credit grants. Grant IDs are
// derived deterministically from the purchase and service line, so a
// replayed activation cannot insert duplicates even if the status guard
// were bypassed.
func (s *purchaseService) materializeGrants(ctx context.Context, p *purchase.PendingPurchase) error {
	lines := p.ServiceLines()
	grants := make([]*creditgrant.CreditGrant, 0, len(lines))
	for i, line := range lines {
		key := s.Idempotency.GenerateKey(idempotency.ScopeGrant, map[string]interface{}{
			"purchase_id":  p.ID,
			"service_name": line.ServiceName,
			"line":         i,
		})
		grant := &creditgrant.CreditGrant{
			ID:               types.UUID_PREFIX_CREDIT_GRANT + "_" + key,
			CustomerID:       p.CustomerID,
			PurchaseID:       p.ID,
			ServiceName:      line.ServiceName,
			TotalCredits:     line.Credits,
			RemainingCredits: line.Credits,
			UsedCredits:      0,
			ExpiresAt:        line.ExpiresAt,
			BaseModel:        types.GetDefaultBaseModel(ctx),
		}
		if err := grant.Validate(); err != nil {
			return err
		}
		grants = append(grants, grant)
	}

	if err := s.CreditGrantRepo.CreateBulk(ctx, grants); err != nil {
		return err
	}

	s.SummaryCache.Delete(cache.SummaryKey(types.GetTenantID(ctx), p.CustomerID))
	return nil
}

// normalizedAmount parses the recorded amount, logging the known
// upstream inconsistency and proceeding with zero when unparsable.
func (s *purchaseService) normalizedAmount(ctx context.Context, p *purchase.PendingPurchase) decimal.Decimal {
	amount, ok := p.NormalizedAmount()
	if !ok && strings.TrimSpace(p.AmountPaid) != "" {
		s.Logger.Warnw("amount_paid is not a valid decimal, falling back to zero",
			"purchase_id", p.ID,
			"amount_paid", p.AmountPaid,
			"request_id", types.GetRequestID(ctx))
	}
	return amount
}

func (s *purchaseService) toResponse(p *purchase.PendingPurchase) *dto.PurchaseResponse {
	if _, ok := p.NormalizedAmount(); !ok && strings.TrimSpace(p.AmountPaid) != "" {
		s.Logger.Warnw("amount_paid is not a valid decimal, falling back to zero",
			"purchase_id", p.ID,
			"amount_paid", p.AmountPaid)
	}
	return dto.NewPurchaseResponse(p)
}
