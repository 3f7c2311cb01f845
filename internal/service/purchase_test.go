package service

import (
	"testing"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/api/dto"
	"github.com/paper-indonesia/circe-credits/internal/domain/customer"
	"github.com/paper-indonesia/circe-credits/internal/domain/purchase"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/testutil"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PurchaseServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PurchaseService
	grantSvc CreditGrantService
	testCust *customer.Customer
}

func TestPurchaseService(t *testing.T) {
	suite.Run(t, new(PurchaseServiceSuite))
}

func (s *PurchaseServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := ServiceParams{
		Logger:          s.GetLogger(),
		CustomerRepo:    s.GetStores().Customer,
		PurchaseRepo:    s.GetStores().Purchase,
		CreditGrantRepo: s.GetStores().CreditGrant,
		PaperClient:     s.GetPaperClient(),
		EmailSender:     s.GetEmailSender(),
		SummaryCache:    s.GetCache(),
		Idempotency:     s.GetIdempotency(),
	}
	s.service = NewPurchaseService(params)
	s.grantSvc = NewCreditGrantService(params)

	s.testCust = &customer.Customer{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:        "Dewi Lestari",
		Email:       "dewi@example.com",
		PhoneNumber: "+628123456789",
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().Customer.Create(s.GetContext(), s.testCust))
}

func (s *PurchaseServiceSuite) createPurchase(method types.PaymentMethodType, amount string) *dto.PurchaseResponse {
	resp, err := s.service.CreatePurchase(s.GetContext(), &dto.CreatePurchaseRequest{
		CustomerID:    s.testCust.ID,
		PackageName:   "Glow Package",
		AmountPaid:    types.AmountString(amount),
		PaymentMethod: method,
		TotalCredits:  10,
		Services: []dto.ServiceLineRequest{
			{ServiceName: "Facial Treatment", Credits: 6},
			{ServiceName: "Hair Spa", Credits: 4},
		},
	})
	s.Require().NoError(err)
	return resp
}

func (s *PurchaseServiceSuite) TestCreatePurchaseStartsPending() {
	resp := s.createPurchase(types.PaymentMethodPayOnVisit, "150000")

	s.Equal(types.PaymentStatusPending, resp.PaymentStatus)
	s.Equal(types.PurchaseStatusPendingPayment, resp.PurchaseStatus)
	s.True(resp.Amount.Equal(decimal.NewFromInt(150000)))
	s.True(resp.IsActionablePending())

	// No grants exist until payment is confirmed.
	grants, err := s.GetStores().CreditGrant.ListByCustomer(s.GetContext(), s.testCust.ID, true)
	s.NoError(err)
	s.Empty(grants)
}

func (s *PurchaseServiceSuite) TestCreatePurchaseUnknownCustomer() {
	_, err := s.service.CreatePurchase(s.GetContext(), &dto.CreatePurchaseRequest{
		CustomerID:    "cust_missing",
		PackageName:   "Glow Package",
		PaymentMethod: types.PaymentMethodBankTransfer,
		TotalCredits:  5,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PurchaseServiceSuite) TestConfirmPaymentOnVisit() {
	created := s.createPurchase(types.PaymentMethodPayOnVisit, "150000")

	resp, err := s.service.ConfirmPayment(s.GetContext(), created.ID, &dto.ConfirmPaymentRequest{
		Amount:        decimal.NewFromInt(150000),
		PaymentMethod: types.PaymentMethodPayOnVisit,
		ReceiptNumber: lo.ToPtr("RCP-001"),
	})
	s.NoError(err)

	s.Equal(types.PaymentStatusPaid, resp.PaymentStatus)
	s.Equal(types.PurchaseStatusActive, resp.PurchaseStatus)
	s.Equal("cash", resp.PaymentLabel)
	s.Contains(resp.ConfirmationNote, "Payment received on visit (cash)")
	s.NotNil(resp.ConfirmedAt)
	s.NotNil(resp.ConfirmedAmount)
	s.True(resp.ConfirmedAmount.Equal(decimal.NewFromInt(150000)))

	// Grants materialize per service line.
	credits, err := s.grantSvc.GetCustomerCredits(s.GetContext(), s.testCust.ID, false)
	s.NoError(err)
	s.Len(credits.Services, 2)

	byName := lo.KeyBy(credits.Services, func(row *dto.AggregatedServiceCredit) string {
		return row.ServiceName
	})
	s.Require().Contains(byName, "Facial Treatment")
	s.Require().Contains(byName, "Hair Spa")
	s.Equal(6, byName["Facial Treatment"].RemainingCredits)
	s.Equal(4, byName["Hair Spa"].RemainingCredits)
}

func (s *PurchaseServiceSuite) TestConfirmPaymentBankTransferNote() {
	created := s.createPurchase(types.PaymentMethodBankTransfer, "200000")

	resp, err := s.service.ConfirmPayment(s.GetContext(), created.ID, &dto.ConfirmPaymentRequest{
		Amount:        decimal.NewFromInt(200000),
		PaymentMethod: types.PaymentMethodBankTransfer,
		Notes:         "transfer ref 8821",
	})
	s.NoError(err)
	s.Equal("bank_transfer", resp.PaymentLabel)
	s.Contains(resp.ConfirmationNote, "Payment received via bank transfer")
	s.Contains(resp.ConfirmationNote, "transfer ref 8821")
}

func (s *PurchaseServiceSuite) TestDoubleConfirmationActivatesOnce() {
	created := s.createPurchase(types.PaymentMethodPayOnVisit, "150000")

	_, err := s.service.ConfirmPayment(s.GetContext(), created.ID, &dto.ConfirmPaymentRequest{
		Amount:        decimal.NewFromInt(150000),
		PaymentMethod: types.PaymentMethodPayOnVisit,
	})
	s.NoError(err)

	_, err = s.service.ConfirmPayment(s.GetContext(), created.ID, &dto.ConfirmPaymentRequest{
		Amount:        decimal.NewFromInt(150000),
		PaymentMethod: types.PaymentMethodPayOnVisit,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Credit totals are unchanged by the failed second attempt.
	summary, err := s.grantSvc.GetCustomerCreditSummary(s.GetContext(), s.testCust.ID)
	s.NoError(err)
	s.Equal(10, summary.TotalCredits)
	s.Equal(10, summary.RemainingCredits)
	s.Equal(1, summary.ActivePackages)
}

func (s *PurchaseServiceSuite) TestConfirmPaymentRejectsDigitalMethod() {
	created := s.createPurchase(types.PaymentMethodPaperDigital, "150000")

	_, err := s.service.ConfirmPayment(s.GetContext(), created.ID, &dto.ConfirmPaymentRequest{
		Amount:        decimal.NewFromInt(150000),
		PaymentMethod: types.PaymentMethodPaperDigital,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PurchaseServiceSuite) TestConfirmPaymentRejectsNonPositiveAmount() {
	created := s.createPurchase(types.PaymentMethodPayOnVisit, "150000")

	_, err := s.service.ConfirmPayment(s.GetContext(), created.ID, &dto.ConfirmPaymentRequest{
		Amount:        decimal.Zero,
		PaymentMethod: types.PaymentMethodPayOnVisit,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PurchaseServiceSuite) TestIssueInvoice() {
	created := s.createPurchase(types.PaymentMethodPaperDigital, "150000.50")
	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)

	resp, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate:   &dueDate,
		SendEmail: true,
	})
	s.NoError(err)
	s.False(resp.AlreadyIssued)
	s.NotEmpty(resp.InvoiceURL)

	// The gateway saw the normalized amount and our purchase ID.
	s.Require().Len(s.GetPaperClient().CreatedInvoices, 1)
	sent := s.GetPaperClient().CreatedInvoices[0]
	s.Equal(created.ID, sent.ExternalID)
	s.True(sent.Amount.Equal(decimal.RequireFromString("150000.50")))
	s.Equal("IDR", sent.Currency)

	// Still pending; the invoice link is stored but nothing activates.
	stored, err := s.GetStores().Purchase.Get(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.PurchaseStatusPendingPayment, stored.PurchaseStatus)
	s.NotNil(stored.ExternalInvoiceID)
	s.NotNil(stored.ExternalInvoiceURL)

	// Invoice email went out.
	s.Require().Len(s.GetEmailSender().Sent, 1)
	s.Equal(s.testCust.Email, s.GetEmailSender().Sent[0].ToAddress)
}

func (s *PurchaseServiceSuite) TestIssueInvoiceSecondCallReturnsExistingURL() {
	created := s.createPurchase(types.PaymentMethodPaperDigital, "150000")
	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)

	first, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate:      &dueDate,
		SendWhatsapp: true,
	})
	s.NoError(err)

	second, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate:      &dueDate,
		SendWhatsapp: true,
	})
	s.NoError(err)
	s.True(second.AlreadyIssued)
	s.Equal(first.InvoiceURL, second.InvoiceURL)
	s.Len(s.GetPaperClient().CreatedInvoices, 1)
}

func (s *PurchaseServiceSuite) TestIssueInvoiceGatewayFailureLeavesStateClean() {
	created := s.createPurchase(types.PaymentMethodPaperDigital, "150000")
	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)

	s.GetPaperClient().FailCreate = true
	_, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate:   &dueDate,
		SendEmail: true,
	})
	s.Error(err)
	s.True(ierr.IsIntegration(err))

	stored, err := s.GetStores().Purchase.Get(s.GetContext(), created.ID)
	s.NoError(err)
	s.Nil(stored.ExternalInvoiceID)
	s.Nil(stored.ExternalInvoiceURL)

	// A retry after the outage succeeds.
	s.GetPaperClient().FailCreate = false
	resp, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate:   &dueDate,
		SendEmail: true,
	})
	s.NoError(err)
	s.False(resp.AlreadyIssued)
}

func (s *PurchaseServiceSuite) TestIssueInvoiceRejectsManualMethod() {
	created := s.createPurchase(types.PaymentMethodBankTransfer, "150000")
	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)

	_, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate:   &dueDate,
		SendEmail: true,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PurchaseServiceSuite) TestIssueInvoiceRequiresChannel() {
	created := s.createPurchase(types.PaymentMethodPaperDigital, "150000")
	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)

	_, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate: &dueDate,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PurchaseServiceSuite) TestActivateFromGateway() {
	created := s.createPurchase(types.PaymentMethodPaperDigital, "150000")
	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)

	_, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate:   &dueDate,
		SendEmail: true,
	})
	s.NoError(err)

	stored, err := s.GetStores().Purchase.Get(s.GetContext(), created.ID)
	s.NoError(err)
	invoiceID := *stored.ExternalInvoiceID

	err = s.service.ActivateFromGateway(s.GetContext(), invoiceID, types.AmountString("150000"))
	s.NoError(err)

	activated, err := s.GetStores().Purchase.Get(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.PurchaseStatusActive, activated.PurchaseStatus)
	s.Equal(types.PaymentStatusPaid, activated.PaymentStatus)
	s.Equal("paper_digital", activated.PaymentLabel)

	summary, err := s.grantSvc.GetCustomerCreditSummary(s.GetContext(), s.testCust.ID)
	s.NoError(err)
	s.Equal(10, summary.TotalCredits)
}

func (s *PurchaseServiceSuite) TestActivateFromGatewayRedeliveryIsHarmless() {
	created := s.createPurchase(types.PaymentMethodPaperDigital, "150000")
	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)

	_, err := s.service.IssueInvoice(s.GetContext(), created.ID, &dto.IssueInvoiceRequest{
		DueDate:   &dueDate,
		SendEmail: true,
	})
	s.NoError(err)

	stored, err := s.GetStores().Purchase.Get(s.GetContext(), created.ID)
	s.NoError(err)
	invoiceID := *stored.ExternalInvoiceID

	s.NoError(s.service.ActivateFromGateway(s.GetContext(), invoiceID, types.AmountString("150000")))
	s.NoError(s.service.ActivateFromGateway(s.GetContext(), invoiceID, types.AmountString("150000")))

	summary, err := s.grantSvc.GetCustomerCreditSummary(s.GetContext(), s.testCust.ID)
	s.NoError(err)
	s.Equal(10, summary.TotalCredits)
	s.Equal(1, summary.ActivePackages)
}

func (s *PurchaseServiceSuite) TestActivateFromGatewayAdoptsPurchaseTenant() {
	clinicCtx := types.SetTenantID(s.GetContext(), "tenant_clinic_b")

	cust := &customer.Customer{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:        "Rina Wijaya",
		Email:       "rina@example.com",
		PhoneNumber: "+628987654321",
		BaseModel:   types.GetDefaultBaseModel(clinicCtx),
	}
	s.NoError(s.GetStores().Customer.Create(clinicCtx, cust))

	created, err := s.service.CreatePurchase(clinicCtx, &dto.CreatePurchaseRequest{
		CustomerID:    cust.ID,
		PackageName:   "Glow Package",
		AmountPaid:    types.AmountString("150000"),
		PaymentMethod: types.PaymentMethodPaperDigital,
		TotalCredits:  10,
		Services: []dto.ServiceLineRequest{
			{ServiceName: "Facial Treatment", Credits: 6},
			{ServiceName: "Hair Spa", Credits: 4},
		},
	})
	s.Require().NoError(err)

	dueDate := time.Now().UTC().Add(7 * 24 * time.Hour)
	_, err = s.service.IssueInvoice(clinicCtx, created.ID, &dto.IssueInvoiceRequest{
		DueDate:   &dueDate,
		SendEmail: true,
	})
	s.NoError(err)

	stored, err := s.GetStores().Purchase.Get(clinicCtx, created.ID)
	s.NoError(err)
	invoiceID := *stored.ExternalInvoiceID

	// The delivery arrives on the default-tenant webhook context; the
	// activation must still land under the purchase's own tenant.
	err = s.service.ActivateFromGateway(s.GetContext(), invoiceID, types.AmountString("150000"))
	s.NoError(err)

	activated, err := s.GetStores().Purchase.Get(clinicCtx, created.ID)
	s.NoError(err)
	s.Equal(types.PurchaseStatusActive, activated.PurchaseStatus)

	grants, err := s.GetStores().CreditGrant.ListByCustomer(clinicCtx, cust.ID, true)
	s.NoError(err)
	s.Require().Len(grants, 2)
	for _, g := range grants {
		s.Equal("tenant_clinic_b", g.TenantID)
	}
}

func (s *PurchaseServiceSuite) TestListActionablePending() {
	pending := s.createPurchase(types.PaymentMethodPayOnVisit, "150000")
	confirmed := s.createPurchase(types.PaymentMethodBankTransfer, "200000")

	_, err := s.service.ConfirmPayment(s.GetContext(), confirmed.ID, &dto.ConfirmPaymentRequest{
		Amount:        decimal.NewFromInt(200000),
		PaymentMethod: types.PaymentMethodBankTransfer,
	})
	s.NoError(err)

	resp, err := s.service.ListActionablePending(s.GetContext(), s.testCust.ID)
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal(pending.ID, resp.Items[0].ID)
}

func (s *PurchaseServiceSuite) TestListActionablePendingExcludesHalfUpdatedPurchase() {
	pending := s.createPurchase(types.PaymentMethodPayOnVisit, "150000")

	// Inconsistent window: the gateway has recorded the payment but the
	// local transition has not landed. payment_status alone must never
	// make the purchase actionable again, nor keep it in the list.
	halfUpdated := &purchase.PendingPurchase{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PURCHASE),
		CustomerID:     s.testCust.ID,
		PackageName:    "Glow Package",
		AmountPaid:     "150000",
		PaymentMethod:  types.PaymentMethodPaperDigital,
		PaymentStatus:  types.PaymentStatusPaid,
		PurchaseStatus: types.PurchaseStatusPendingPayment,
		TotalCredits:   10,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().Purchase.Create(s.GetContext(), halfUpdated))

	resp, err := s.service.ListActionablePending(s.GetContext(), s.testCust.ID)
	s.NoError(err)
	s.Equal(1, resp.Total)
	s.Equal(pending.ID, resp.Items[0].ID)
}

func (s *PurchaseServiceSuite) TestAmountNormalization() {
	// Decimal string amounts are normalized to numbers on read.
	withDecimal := s.createPurchase(types.PaymentMethodPayOnVisit, "150000.50")
	resp, err := s.service.GetPurchase(s.GetContext(), withDecimal.ID)
	s.NoError(err)
	s.True(resp.Amount.Equal(decimal.RequireFromString("150000.50")))

	// Unparsable amounts fall back to zero instead of failing the read.
	malformed := s.createPurchase(types.PaymentMethodPayOnVisit, "not-a-number")
	resp, err = s.service.GetPurchase(s.GetContext(), malformed.ID)
	s.NoError(err)
	s.True(resp.Amount.IsZero())
}
