package testutil

import (
	"context"

	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/integration/paperid"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// StubPaperClient is a test double for the billing gateway. It records
// every invoice it creates and can be flipped into failure mode.
type StubPaperClient struct {
	CreatedInvoices []*paperid.CreateInvoiceRequest
	InvoiceURL      string
	FailCreate      bool
}

func NewStubPaperClient() *StubPaperClient {
	return &StubPaperClient{
		InvoiceURL: "https://pay.paper.id/inv/stub",
	}
}

func (c *StubPaperClient) CreateInvoice(ctx context.Context, req *paperid.CreateInvoiceRequest) (*paperid.Invoice, error) {
	if c.FailCreate {
		return nil, ierr.NewError("gateway unavailable").
			WithHint("Billing gateway is unreachable, try again").
			Mark(ierr.ErrIntegration)
	}
	c.CreatedInvoices = append(c.CreatedInvoices, req)
	return &paperid.Invoice{
		ID:         types.GenerateUUIDWithPrefix("inv"),
		ExternalID: req.ExternalID,
		URL:        c.InvoiceURL,
		Status:     paperid.InvoiceStatusPending,
		Amount:     req.Amount,
		Currency:   req.Currency,
		DueDate:    req.DueDate,
	}, nil
}

func (c *StubPaperClient) GetInvoice(ctx context.Context, invoiceID string) (*paperid.Invoice, error) {
	return &paperid.Invoice{
		ID:     invoiceID,
		Status: paperid.InvoiceStatusPending,
		URL:    c.InvoiceURL,
	}, nil
}

func (c *StubPaperClient) VerifyWebhookSignature(payload []byte, signature string) error {
	if signature == "invalid" {
		return ierr.NewError("invalid webhook signature").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}
