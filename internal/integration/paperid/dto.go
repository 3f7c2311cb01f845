package paperid

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceChannels selects how the hosted invoice link is delivered to
// the customer.
type InvoiceChannels struct {
	Email    bool `json:"email"`
	Whatsapp bool `json:"whatsapp"`
	Sms      bool `json:"sms"`
}

// Any reports whether at least one channel is selected.
func (c InvoiceChannels) Any() bool {
	return c.Email || c.Whatsapp || c.Sms
}

// CreateInvoiceRequest asks the gateway for a hosted payment invoice.
// ExternalID carries our purchase ID so webhook events can be traced
// back.
type CreateInvoiceRequest struct {
	ExternalID    string          `json:"external_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DueDate       time.Time       `json:"due_date"`
	Notes         string          `json:"notes,omitempty"`
	Channels      InvoiceChannels `json:"channels"`
}

// Invoice is the gateway's representation of a hosted invoice.
type Invoice struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	URL        string          `json:"url"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	DueDate    time.Time       `json:"due_date"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Gateway invoice statuses we care about.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusExpired = "expired"
)
