package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/postgres"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

type creditGrantRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

// NewCreditGrantRepository creates a postgres-backed credit grant repository
func NewCreditGrantRepository(client *postgres.Client, log *logger.Logger) creditgrant.Repository {
	return &creditGrantRepository{client: client, logger: log}
}

const creditGrantColumns = `
	id, customer_id, purchase_id, service_name,
	total_credits, remaining_credits, used_credits,
	expires_at, is_expired,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *creditGrantRepository) Create(ctx context.Context, grant *creditgrant.CreditGrant) error {
	return r.insert(ctx, r.client.DB, grant)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *creditGrantRepository) insert(ctx context.Context, db execer, grant *creditgrant.CreditGrant) error {
	// ON CONFLICT DO NOTHING: grant IDs are deterministic per purchase
	// and service line, so a replayed activation is a no-op here.
	result, err := db.ExecContext(ctx, `
		INSERT INTO credit_grants (`+creditGrantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING`,
		grant.ID, grant.CustomerID, grant.PurchaseID, grant.ServiceName,
		grant.TotalCredits, grant.RemainingCredits, grant.UsedCredits,
		grant.ExpiresAt, grant.IsExpired,
		grant.TenantID, grant.Status, grant.CreatedAt, grant.UpdatedAt,
		grant.CreatedBy, grant.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create credit grant").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		r.logger.Warnw("credit grant already exists, skipping insert",
			"grant_id", grant.ID,
			"purchase_id", grant.PurchaseID)
	}
	return nil
}

func (r *creditGrantRepository) CreateBulk(ctx context.Context, grants []*creditgrant.CreditGrant) error {
	return r.client.WithTx(ctx, func(tx *sql.Tx) error {
		for _, grant := range grants {
			if err := r.insert(ctx, tx, grant); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *creditGrantRepository) Get(ctx context.Context, id string) (*creditgrant.CreditGrant, error) {
	row := r.client.DB.QueryRowContext(ctx, `
		SELECT `+creditGrantColumns+`
		FROM credit_grants
		WHERE id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx),
	)
	grant, err := scanCreditGrant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("credit grant %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return grant, nil
}

func (r *creditGrantRepository) ListByCustomer(ctx context.Context, customerID string, includeExpired bool) ([]*creditgrant.CreditGrant, error) {
	query := `
		SELECT ` + creditGrantColumns + `
		FROM credit_grants
		WHERE customer_id = $1 AND tenant_id = $2 AND status = $3`
	args := []interface{}{customerID, types.GetTenantID(ctx), types.StatusPublished}
	if !includeExpired {
		query += ` AND is_expired = false`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.client.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list credit grants").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	grants := make([]*creditgrant.CreditGrant, 0)
	for rows.Next() {
		grant, err := scanCreditGrant(rows)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return grants, nil
}

func (r *creditGrantRepository) Update(ctx context.Context, grant *creditgrant.CreditGrant) error {
	result, err := r.client.DB.ExecContext(ctx, `
		UPDATE credit_grants
		SET remaining_credits = $1, used_credits = $2, is_expired = $3,
		    updated_at = $4, updated_by = $5
		WHERE id = $6 AND tenant_id = $7`,
		grant.RemainingCredits, grant.UsedCredits, grant.IsExpired,
		time.Now().UTC(), grant.UpdatedBy,
		grant.ID, types.GetTenantID(ctx),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update credit grant").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("credit grant %s not found", grant.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// MarkExpired sweeps every tenant. The cron trigger runs without a
// tenant header, and an expired grant is expired regardless of who
// owns it.
func (r *creditGrantRepository) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.client.DB.ExecContext(ctx, `
		UPDATE credit_grants
		SET is_expired = true, updated_at = $1
		WHERE is_expired = false
		  AND expires_at IS NOT NULL AND expires_at <= $2`,
		now, now,
	)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to mark expired credit grants").
			Mark(ierr.ErrDatabase)
	}
	affected, _ := result.RowsAffected()
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCreditGrant(row rowScanner) (*creditgrant.CreditGrant, error) {
	var grant creditgrant.CreditGrant
	var expiresAt sql.NullTime
	err := row.Scan(
		&grant.ID, &grant.CustomerID, &grant.PurchaseID, &grant.ServiceName,
		&grant.TotalCredits, &grant.RemainingCredits, &grant.UsedCredits,
		&expiresAt, &grant.IsExpired,
		&grant.TenantID, &grant.Status, &grant.CreatedAt, &grant.UpdatedAt,
		&grant.CreatedBy, &grant.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		grant.ExpiresAt = &expiresAt.Time
	}
	return &grant, nil
}
