package service

import (
	"github.com/paper-indonesia/circe-credits/internal/cache"
	"github.com/paper-indonesia/circe-credits/internal/config"
	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	"github.com/paper-indonesia/circe-credits/internal/domain/customer"
	"github.com/paper-indonesia/circe-credits/internal/domain/purchase"
	"github.com/paper-indonesia/circe-credits/internal/email"
	"github.com/paper-indonesia/circe-credits/internal/idempotency"
	"github.com/paper-indonesia/circe-credits/internal/integration/paperid"
	"github.com/paper-indonesia/circe-credits/internal/logger"
)

// ServiceParams holds the dependencies shared by all services. Services
// embed it and pick what they need.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	CustomerRepo    customer.Repository
	PurchaseRepo    purchase.Repository
	CreditGrantRepo creditgrant.Repository

	PaperClient  paperid.PaperClient
	EmailSender  email.Sender
	SummaryCache cache.Cache
	Idempotency  *idempotency.Generator
}
