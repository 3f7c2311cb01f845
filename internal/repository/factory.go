package repository

import (
	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	"github.com/paper-indonesia/circe-credits/internal/domain/customer"
	"github.com/paper-indonesia/circe-credits/internal/domain/purchase"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	pgclient "github.com/paper-indonesia/circe-credits/internal/postgres"
	pgrepo "github.com/paper-indonesia/circe-credits/internal/repository/postgres"
)

// NewCustomerRepository wires the postgres customer repository.
func NewCustomerRepository(client *pgclient.Client, log *logger.Logger) customer.Repository {
	return pgrepo.NewCustomerRepository(client, log)
}

// NewPurchaseRepository wires the postgres purchase repository.
func NewPurchaseRepository(client *pgclient.Client, log *logger.Logger) purchase.Repository {
	return pgrepo.NewPurchaseRepository(client, log)
}

// NewCreditGrantRepository wires the postgres credit grant repository.
func NewCreditGrantRepository(client *pgclient.Client, log *logger.Logger) creditgrant.Repository {
	return pgrepo.NewCreditGrantRepository(client, log)
}
