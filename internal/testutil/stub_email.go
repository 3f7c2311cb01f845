package testutil

import (
	"context"

	"github.com/paper-indonesia/circe-credits/internal/email"
)

// StubEmailSender records invoice emails instead of sending them.
type StubEmailSender struct {
	Sent []email.InvoiceEmailRequest
}

func NewStubEmailSender() *StubEmailSender {
	return &StubEmailSender{}
}

func (s *StubEmailSender) SendInvoiceIssued(ctx context.Context, req email.InvoiceEmailRequest) error {
	s.Sent = append(s.Sent, req)
	return nil
}
