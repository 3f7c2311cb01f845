package testutil

import (
	"context"

	"github.com/paper-indonesia/circe-credits/internal/cache"
	"github.com/paper-indonesia/circe-credits/internal/idempotency"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores aggregates the in-memory repositories backing a service test.
type Stores struct {
	Customer    *InMemoryCustomerStore
	Purchase    *InMemoryPurchaseStore
	CreditGrant *InMemoryCreditGrantStore
}

// BaseServiceTestSuite wires the common test fixtures: in-memory
// stores, gateway and email stubs, cache and a request context with
// tenant and user set.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	logger      *logger.Logger
	stores      Stores
	paperClient *StubPaperClient
	emailSender *StubEmailSender
	cache       cache.Cache
	idempotency *idempotency.Generator
}

// SetupTest initializes fresh fixtures before each test.
func (s *BaseServiceTestSuite) SetupTest() {
	s.logger = logger.GetLogger()
	s.stores = Stores{
		Customer:    NewInMemoryCustomerStore(),
		Purchase:    NewInMemoryPurchaseStore(),
		CreditGrant: NewInMemoryCreditGrantStore(),
	}
	s.paperClient = NewStubPaperClient()
	s.emailSender = NewStubEmailSender()
	s.cache = cache.NewInMemoryCache()
	s.idempotency = idempotency.NewGenerator()

	ctx := context.Background()
	ctx = types.SetTenantID(ctx, types.DefaultTenantID)
	ctx = types.SetUserID(ctx, "user_test")
	s.ctx = ctx
}

// GetContext returns a context carrying tenant and user identity.
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetPaperClient() *StubPaperClient {
	return s.paperClient
}

func (s *BaseServiceTestSuite) GetEmailSender() *StubEmailSender {
	return s.emailSender
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetIdempotency() *idempotency.Generator {
	return s.idempotency
}
