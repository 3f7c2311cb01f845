package email

import (
	"github.com/paper-indonesia/circe-credits/internal/config"
	"github.com/resend/resend-go/v2"
)

// EmailClient wraps the resend client with enablement state.
type EmailClient struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
}

// NewEmailClient creates a resend-backed email client. When disabled,
// sends are skipped rather than failed.
func NewEmailClient(cfg *config.Configuration) *EmailClient {
	var client *resend.Client
	if cfg.Email.Enabled && cfg.Email.APIKey != "" {
		client = resend.NewClient(cfg.Email.APIKey)
	}
	return &EmailClient{
		client:      client,
		enabled:     client != nil,
		fromAddress: cfg.Email.FromAddress,
	}
}

// IsEnabled reports whether outbound email is configured.
func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

// GetFromAddress returns the configured sender address.
func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}
