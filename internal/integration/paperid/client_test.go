package paperid

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/config"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) PaperClient {
	return NewClient(config.PaperIDConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		WebhookSecret:  "test-secret",
		RequestTimeout: 5 * time.Second,
	}, logger.GetLogger())
}

func TestCreateInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/invoices", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req CreateInvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "purch_123", req.ExternalID)
		assert.Equal(t, "IDR", req.Currency)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Invoice{
			ID:         "inv_abc",
			ExternalID: req.ExternalID,
			URL:        "https://pay.paper.id/inv/inv_abc",
			Status:     InvoiceStatusPending,
			Amount:     req.Amount,
			Currency:   req.Currency,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	invoice, err := client.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		ExternalID:   "purch_123",
		CustomerName: "Dewi Lestari",
		Description:  "Glow Package",
		Amount:       decimal.NewFromInt(150000),
		Currency:     "IDR",
		DueDate:      time.Now().Add(7 * 24 * time.Hour),
		Channels:     InvoiceChannels{Email: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "inv_abc", invoice.ID)
	assert.Equal(t, "https://pay.paper.id/inv/inv_abc", invoice.URL)
}

func TestCreateInvoiceRequiresChannel(t *testing.T) {
	client := newTestClient("http://unused")
	_, err := client.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		ExternalID: "purch_123",
		Amount:     decimal.NewFromInt(150000),
	})
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestCreateInvoiceGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "duplicate external_id"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateInvoice(context.Background(), &CreateInvoiceRequest{
		ExternalID: "purch_123",
		Amount:     decimal.NewFromInt(150000),
		Channels:   InvoiceChannels{Email: true},
	})
	assert.Error(t, err)
	assert.True(t, ierr.IsIntegration(err))
}

func TestGetInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices/inv_abc", r.URL.Path)
		json.NewEncoder(w).Encode(Invoice{ID: "inv_abc", Status: InvoiceStatusPaid})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	invoice, err := client.GetInvoice(context.Background(), "inv_abc")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, invoice.Status)
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := newTestClient("http://unused")
	payload := []byte(`{"type":"invoice.paid"}`)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(payload)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.NoError(t, client.VerifyWebhookSignature(payload, valid))
	assert.Error(t, client.VerifyWebhookSignature(payload, "bogus"))
	assert.Error(t, client.VerifyWebhookSignature([]byte("tampered"), valid))
}
