package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/paper-indonesia/circe-credits/internal/domain/purchase"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/postgres"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/shopspring/decimal"
)

type purchaseRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

// NewPurchaseRepository creates a postgres-backed purchase repository
func NewPurchaseRepository(client *postgres.Client, log *logger.Logger) purchase.Repository {
	return &purchaseRepository{client: client, logger: log}
}

const purchaseColumns = `
	id, customer_id, package_name, amount_paid,
	payment_method, payment_status, purchase_status,
	total_credits, services,
	external_invoice_id, external_invoice_url, payment_label,
	confirmed_at, confirmed_amount, confirmation_note, receipt_number, notes,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *purchaseRepository) Create(ctx context.Context, p *purchase.PendingPurchase) error {
	services, err := json.Marshal(p.Services)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrInternal)
	}
	_, err = r.client.DB.ExecContext(ctx, `
		INSERT INTO pending_purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		p.ID, p.CustomerID, p.PackageName, p.AmountPaid,
		p.PaymentMethod, p.PaymentStatus, p.PurchaseStatus,
		p.TotalCredits, services,
		p.ExternalInvoiceID, p.ExternalInvoiceURL, p.PaymentLabel,
		p.ConfirmedAt, decimalPtr(p.ConfirmedAmount), p.ConfirmationNote, p.ReceiptNumber, p.Notes,
		p.TenantID, p.Status, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create purchase").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *purchaseRepository) Get(ctx context.Context, id string) (*purchase.PendingPurchase, error) {
	row := r.client.DB.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM pending_purchases
		WHERE id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx),
	)
	p, err := scanPurchase(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("purchase %s not found", id).
				WithHint("Purchase does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *purchaseRepository) GetByExternalInvoiceID(ctx context.Context, externalInvoiceID string) (*purchase.PendingPurchase, error) {
	row := r.client.DB.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM pending_purchases
		WHERE external_invoice_id = $1`,
		externalInvoiceID,
	)
	p, err := scanPurchase(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("no purchase for invoice %s", externalInvoiceID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *purchaseRepository) ListActionableByCustomer(ctx context.Context, customerID string) ([]*purchase.PendingPurchase, error) {
	// Both status columns are checked: payment_status alone may already
	// read paid while the local transition has not landed yet.
	rows, err := r.client.DB.QueryContext(ctx, `
		SELECT `+purchaseColumns+`
		FROM pending_purchases
		WHERE customer_id = $1 AND tenant_id = $2 AND status = $3
		  AND payment_status = $4 AND purchase_status = $5
		ORDER BY created_at, id`,
		customerID, types.GetTenantID(ctx), types.StatusPublished,
		types.PaymentStatusPending, types.PurchaseStatusPendingPayment,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pending purchases").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	purchases := make([]*purchase.PendingPurchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return purchases, nil
}

func (r *purchaseRepository) SetExternalInvoice(ctx context.Context, id, externalInvoiceID, externalInvoiceURL string) error {
	result, err := r.client.DB.ExecContext(ctx, `
		UPDATE pending_purchases
		SET external_invoice_id = $1, external_invoice_url = $2, updated_at = now()
		WHERE id = $3 AND tenant_id = $4`,
		externalInvoiceID, externalInvoiceURL, id, types.GetTenantID(ctx),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to store invoice on purchase").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("purchase %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *purchaseRepository) Activate(ctx context.Context, id string, params purchase.ActivateParams) (*purchase.PendingPurchase, error) {
	// Conditional update keyed on the current status: at most one
	// activation succeeds regardless of concurrent confirmations.
	row := r.client.DB.QueryRowContext(ctx, `
		UPDATE pending_purchases
		SET purchase_status = $1, payment_status = $2,
		    confirmed_at = $3, confirmed_amount = $4,
		    payment_label = $5,
		    confirmation_note = $6, receipt_number = COALESCE($7, receipt_number),
		    updated_at = $8, updated_by = $9
		WHERE id = $10 AND tenant_id = $11 AND purchase_status = $12
		RETURNING `+purchaseColumns,
		types.PurchaseStatusActive, types.PaymentStatusPaid,
		params.ConfirmedAt, params.ConfirmedAmount.String(),
		params.PaymentLabel,
		params.Note, params.ReceiptNumber,
		params.ConfirmedAt, params.UpdatedBy,
		id, types.GetTenantID(ctx), types.PurchaseStatusPendingPayment,
	)

	p, err := scanPurchase(row)
	if err != nil {
		if err == sql.ErrNoRows {
			// Distinguish "not found" from "already handled".
			existing, getErr := r.Get(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			return nil, ierr.NewErrorf("purchase %s is not awaiting payment", id).
				WithHint("Payment for this purchase has already been confirmed").
				WithReportableDetails(map[string]interface{}{
					"purchase_status": existing.PurchaseStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func decimalPtr(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

type rowScannerP interface {
	Scan(dest ...interface{}) error
}

func scanPurchase(row rowScannerP) (*purchase.PendingPurchase, error) {
	var p purchase.PendingPurchase
	var services []byte
	var externalInvoiceID, externalInvoiceURL, receiptNumber sql.NullString
	var confirmedAt sql.NullTime
	var confirmedAmount sql.NullString

	err := row.Scan(
		&p.ID, &p.CustomerID, &p.PackageName, &p.AmountPaid,
		&p.PaymentMethod, &p.PaymentStatus, &p.PurchaseStatus,
		&p.TotalCredits, &services,
		&externalInvoiceID, &externalInvoiceURL, &p.PaymentLabel,
		&confirmedAt, &confirmedAmount, &p.ConfirmationNote, &receiptNumber, &p.Notes,
		&p.TenantID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if len(services) > 0 {
		if err := json.Unmarshal(services, &p.Services); err != nil {
			return nil, err
		}
	}
	if externalInvoiceID.Valid {
		p.ExternalInvoiceID = &externalInvoiceID.String
	}
	if externalInvoiceURL.Valid {
		p.ExternalInvoiceURL = &externalInvoiceURL.String
	}
	if receiptNumber.Valid {
		p.ReceiptNumber = &receiptNumber.String
	}
	if confirmedAt.Valid {
		p.ConfirmedAt = &confirmedAt.Time
	}
	if confirmedAmount.Valid {
		if amount, ok := types.ParseAmount(confirmedAmount.String); ok {
			p.ConfirmedAmount = &amount
		}
	}
	return &p, nil
}
