package email

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/resend/resend-go/v2"
	"github.com/shopspring/decimal"
)

// emailTemplates stores email templates as string constants
var emailTemplates = map[string]string{
	"invoice-issued.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Your invoice is ready</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hi {{.customer_name}},</p>
    <p>Your invoice for <strong>{{.package_name}}</strong> is ready.</p>
    <p>Amount due: <strong>Rp {{.amount}}</strong><br/>
    Due date: <strong>{{.due_date}}</strong></p>
    <p><a href="{{.invoice_url}}">Pay your invoice</a></p>
    <p>Your package credits will be activated as soon as the payment is confirmed.</p>
</body>
</html>`,
}

// InvoiceEmailRequest carries the details for an invoice-issued email.
type InvoiceEmailRequest struct {
	ToAddress    string
	CustomerName string
	PackageName  string
	Amount       decimal.Decimal
	DueDate      time.Time
	InvoiceURL   string
}

// Sender delivers invoice notifications. Implemented by the resend
// backed service and by test stubs.
type Sender interface {
	SendInvoiceIssued(ctx context.Context, req InvoiceEmailRequest) error
}

// Service sends transactional email through resend.
type Service struct {
	client *EmailClient
	logger *logger.Logger
}

// NewService creates a new email service
func NewService(client *EmailClient, log *logger.Logger) Sender {
	return &Service{client: client, logger: log}
}

// SendInvoiceIssued emails the hosted invoice link to the customer.
// Disabled email configuration downgrades to a logged skip so invoice
// issuance never depends on email availability.
func (s *Service) SendInvoiceIssued(ctx context.Context, req InvoiceEmailRequest) error {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping invoice email",
			"to", req.ToAddress,
			"invoice_url", req.InvoiceURL)
		return nil
	}

	tmpl, err := template.New("invoice-issued").Parse(emailTemplates["invoice-issued.html"])
	if err != nil {
		return err
	}

	var body bytes.Buffer
	err = tmpl.Execute(&body, map[string]interface{}{
		"customer_name": req.CustomerName,
		"package_name":  req.PackageName,
		"amount":        req.Amount.StringFixed(2),
		"due_date":      req.DueDate.Format("2 January 2006"),
		"invoice_url":   req.InvoiceURL,
	})
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.client.GetFromAddress(),
		To:      []string{req.ToAddress},
		Subject: "Your invoice for " + req.PackageName,
		Html:    body.String(),
	}

	sent, err := s.client.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Errorw("failed to send invoice email",
			"to", req.ToAddress,
			"error", err)
		return err
	}

	s.logger.Infow("sent invoice email",
		"to", req.ToAddress,
		"email_id", sent.Id)
	return nil
}
