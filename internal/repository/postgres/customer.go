package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/paper-indonesia/circe-credits/internal/domain/customer"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/postgres"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

type customerRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

// NewCustomerRepository creates a postgres-backed customer repository
func NewCustomerRepository(client *postgres.Client, log *logger.Logger) customer.Repository {
	return &customerRepository{client: client, logger: log}
}

const customerColumns = `
	id, name, email, phone_number,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	_, err := r.client.DB.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Email, c.PhoneNumber,
		c.TenantID, c.Status, c.CreatedAt, c.UpdatedAt, c.CreatedBy, c.UpdatedBy,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return ierr.NewErrorf("customer %s already exists", c.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create customer").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.client.DB.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1 AND tenant_id = $2`,
		id, types.GetTenantID(ctx),
	).Scan(
		&c.ID, &c.Name, &c.Email, &c.PhoneNumber,
		&c.TenantID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy, &c.UpdatedBy,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("customer %s not found", id).
				WithHint("Customer does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*customer.Customer, error) {
	rows, err := r.client.DB.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE tenant_id = $1 AND status = $2
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`,
		types.GetTenantID(ctx), types.StatusPublished,
		filter.GetLimit(), filter.GetOffset(),
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list customers").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		var c customer.Customer
		err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.PhoneNumber,
			&c.TenantID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy, &c.UpdatedBy,
		)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		customers = append(customers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return customers, nil
}
