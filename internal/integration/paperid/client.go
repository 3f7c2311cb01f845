package paperid

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/paper-indonesia/circe-credits/internal/config"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
)

// HeaderWebhookSignature carries the HMAC signature on webhook deliveries.
const HeaderWebhookSignature = "X-Paper-Signature"

// PaperClient defines the interface for Paper.id billing API operations
type PaperClient interface {
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error)
	VerifyWebhookSignature(payload []byte, signature string) error
}

// Client handles Paper.id API client setup and requests
type Client struct {
	cfg        config.PaperIDConfig
	httpClient *retryablehttp.Client
	logger     *logger.Logger
}

// NewClient creates a new Paper.id client. Outbound calls are retried
// with backoff; the per-attempt timeout comes from configuration.
func NewClient(cfg config.PaperIDConfig, log *logger.Logger) PaperClient {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.Logger = nil
	httpClient.HTTPClient.Timeout = cfg.RequestTimeout

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
	}
}

// CreateInvoice creates a hosted invoice and returns its payment URL.
// Nothing is persisted locally on failure, so the caller can retry.
func (c *Client) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error) {
	if !req.Channels.Any() {
		return nil, ierr.NewError("no notification channel selected").
			WithHint("Select at least one of email, whatsapp or sms").
			Mark(ierr.ErrValidation)
	}

	var invoice Invoice
	if err := c.do(ctx, http.MethodPost, "/invoices", req, &invoice); err != nil {
		return nil, err
	}

	c.logger.Infow("created hosted invoice",
		"external_id", req.ExternalID,
		"invoice_id", invoice.ID,
		"payment_url_present", invoice.URL != "")

	return &invoice, nil
}

// GetInvoice retrieves an invoice by the gateway's ID.
func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	if invoiceID == "" {
		return nil, ierr.NewError("invoice id is required").Mark(ierr.ErrValidation)
	}
	var invoice Invoice
	if err := c.do(ctx, http.MethodGet, "/invoices/"+invoiceID, nil, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// VerifyWebhookSignature verifies the HMAC-SHA256 signature of a
// webhook payload against the configured webhook secret.
func (c *Client) VerifyWebhookSignature(payload []byte, signature string) error {
	if c.cfg.WebhookSecret == "" {
		return ierr.NewError("webhook secret not configured").
			WithHint("Configure the Paper.id webhook secret").
			Mark(ierr.ErrValidation)
	}
	mac := hmac.New(sha256.New, []byte(c.cfg.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ierr.NewError("invalid webhook signature").
			Mark(ierr.ErrPermissionDenied)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rawBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to encode gateway request").
				Mark(ierr.ErrInternal)
		}
		rawBody = bytes.NewReader(payload)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rawBody)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrInternal)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorw("gateway request failed",
			"method", method,
			"path", path,
			"error", err)
		return ierr.WithError(err).
			WithHint("Billing gateway is unreachable, try again").
			Mark(ierr.ErrIntegration)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrIntegration)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Errorw("gateway returned error status",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(respBody))
		return ierr.NewErrorf("gateway returned status %d", resp.StatusCode).
			WithHint("Billing gateway rejected the request").
			WithReportableDetails(map[string]interface{}{
				"status": resp.StatusCode,
			}).
			Mark(ierr.ErrIntegration)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return ierr.WithError(err).
				WithHint(fmt.Sprintf("Failed to decode gateway %s response", path)).
				Mark(ierr.ErrIntegration)
		}
	}
	return nil
}
