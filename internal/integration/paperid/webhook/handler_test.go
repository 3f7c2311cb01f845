package webhook

import (
	"context"
	"testing"

	"github.com/paper-indonesia/circe-credits/internal/api/dto"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/testutil"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/stretchr/testify/assert"
)

type fakePurchaseService struct {
	activations []string
	fail        bool
}

func (f *fakePurchaseService) CreatePurchase(ctx context.Context, req *dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	return nil, nil
}

func (f *fakePurchaseService) GetPurchase(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	return nil, nil
}

func (f *fakePurchaseService) ListActionablePending(ctx context.Context, customerID string) (*dto.ListPurchasesResponse, error) {
	return nil, nil
}

func (f *fakePurchaseService) ConfirmPayment(ctx context.Context, purchaseID string, req *dto.ConfirmPaymentRequest) (*dto.PurchaseResponse, error) {
	return nil, nil
}

func (f *fakePurchaseService) IssueInvoice(ctx context.Context, purchaseID string, req *dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error) {
	return nil, nil
}

func (f *fakePurchaseService) ActivateFromGateway(ctx context.Context, externalInvoiceID string, paidAmount types.AmountString) error {
	if f.fail {
		return ierr.NewError("boom").Mark(ierr.ErrDatabase)
	}
	f.activations = append(f.activations, externalInvoiceID)
	return nil
}

func newTestHandler(svc *fakePurchaseService) *Handler {
	return NewHandler(testutil.NewStubPaperClient(), svc, logger.GetLogger())
}

func TestHandleInvoicePaid(t *testing.T) {
	svc := &fakePurchaseService{}
	h := newTestHandler(svc)

	err := h.HandleWebhookEvent(context.Background(), &WebhookEvent{
		ID:   "evt_1",
		Type: EventInvoicePaid,
		Data: InvoiceEventData{InvoiceID: "inv_abc", PaidAmount: "150000"},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"inv_abc"}, svc.activations)
}

func TestIgnoresNonPaymentEvents(t *testing.T) {
	svc := &fakePurchaseService{}
	h := newTestHandler(svc)

	err := h.HandleWebhookEvent(context.Background(), &WebhookEvent{
		ID:   "evt_2",
		Type: EventInvoiceExpired,
		Data: InvoiceEventData{InvoiceID: "inv_abc"},
	})
	assert.NoError(t, err)
	assert.Empty(t, svc.activations)
}

func TestSkipsEventWithoutInvoiceID(t *testing.T) {
	svc := &fakePurchaseService{}
	h := newTestHandler(svc)

	err := h.HandleWebhookEvent(context.Background(), &WebhookEvent{
		ID:   "evt_3",
		Type: EventInvoicePaid,
	})
	assert.NoError(t, err)
	assert.Empty(t, svc.activations)
}

func TestActivationFailureIsSwallowed(t *testing.T) {
	svc := &fakePurchaseService{fail: true}
	h := newTestHandler(svc)

	err := h.HandleWebhookEvent(context.Background(), &WebhookEvent{
		ID:   "evt_4",
		Type: EventInvoicePaid,
		Data: InvoiceEventData{InvoiceID: "inv_abc"},
	})
	assert.NoError(t, err)
}
