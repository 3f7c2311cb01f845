package service

import (
	"testing"
	"time"

	"github.com/paper-indonesia/circe-credits/internal/api/dto"
	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	ierr "github.com/paper-indonesia/circe-credits/internal/errors"
	"github.com/paper-indonesia/circe-credits/internal/testutil"
	"github.com/paper-indonesia/circe-credits/internal/types"
	"github.com/stretchr/testify/suite"
)

type CreditGrantServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CreditGrantService
}

func TestCreditGrantService(t *testing.T) {
	suite.Run(t, new(CreditGrantServiceSuite))
}

func (s *CreditGrantServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCreditGrantService(ServiceParams{
		Logger:          s.GetLogger(),
		CustomerRepo:    s.GetStores().Customer,
		PurchaseRepo:    s.GetStores().Purchase,
		CreditGrantRepo: s.GetStores().CreditGrant,
		PaperClient:     s.GetPaperClient(),
		EmailSender:     s.GetEmailSender(),
		SummaryCache:    s.GetCache(),
		Idempotency:     s.GetIdempotency(),
	})
}

func (s *CreditGrantServiceSuite) seedGrant(g *creditgrant.CreditGrant) *creditgrant.CreditGrant {
	if g.ID == "" {
		g.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_GRANT)
	}
	if g.TenantID == "" {
		g.BaseModel = types.GetDefaultBaseModel(s.GetContext())
	}
	s.NoError(s.GetStores().CreditGrant.Create(s.GetContext(), g))
	return g
}

func (s *CreditGrantServiceSuite) TestAggregationAcrossPurchases() {
	exp1 := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	exp2 := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Facial Treatment",
		TotalCredits: 10, RemainingCredits: 6, UsedCredits: 4, ExpiresAt: &exp2,
	})
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_2", ServiceName: "Facial Treatment",
		TotalCredits: 5, RemainingCredits: 5, UsedCredits: 0, ExpiresAt: &exp1,
	})
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_2", ServiceName: "Hair Spa",
		TotalCredits: 3, RemainingCredits: 2, UsedCredits: 1,
	})

	resp, err := s.service.GetCustomerCredits(s.GetContext(), "cust_1", false)
	s.NoError(err)
	s.Len(resp.Services, 2)

	facial := resp.Services[0]
	s.Equal("Facial Treatment", facial.ServiceName)
	s.Equal(15, facial.TotalCredits)
	s.Equal(11, facial.RemainingCredits)
	s.Equal(4, facial.UsedCredits)
	s.False(facial.HasNoExpiry)
	s.NotNil(facial.EarliestExpiry)
	s.True(facial.EarliestExpiry.Equal(exp1))
	s.Len(facial.Sources, 2)

	hairSpa := resp.Services[1]
	s.Equal("Hair Spa", hairSpa.ServiceName)
	s.True(hairSpa.HasNoExpiry)
	s.Nil(hairSpa.EarliestExpiry)
}

func (s *CreditGrantServiceSuite) TestNoExpiryDominance() {
	expSoon := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5, ExpiresAt: &expSoon,
	})
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_2", ServiceName: "Massage",
		TotalCredits: 10, RemainingCredits: 10,
	})

	resp, err := s.service.GetCustomerCredits(s.GetContext(), "cust_1", false)
	s.NoError(err)
	s.Len(resp.Services, 1)

	row := resp.Services[0]
	s.True(row.HasNoExpiry)
	s.Nil(row.EarliestExpiry)
	s.Equal(15, row.RemainingCredits)
}

func (s *CreditGrantServiceSuite) TestExpiredGrantsExcludedButFlagged() {
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 10, RemainingCredits: 7, UsedCredits: 3,
		ExpiresAt: &past, IsExpired: true,
	})
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_2", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5,
	})

	resp, err := s.service.GetCustomerCredits(s.GetContext(), "cust_1", true)
	s.NoError(err)
	s.Len(resp.Services, 1)

	row := resp.Services[0]
	s.Equal(5, row.TotalCredits)
	s.Equal(5, row.RemainingCredits)
	s.True(row.IsAnyExpired)
	s.Len(row.Sources, 1)
}

func (s *CreditGrantServiceSuite) TestExpiredFlagSurvivesDefaultView() {
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 10, RemainingCredits: 10,
		ExpiresAt: &past, IsExpired: true,
	})
	active := s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_2", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5,
	})

	// Default view: expired grants are hidden from the raw list but
	// the caution flag on the service row is still raised.
	resp, err := s.service.GetCustomerCredits(s.GetContext(), "cust_1", false)
	s.NoError(err)

	s.Require().Len(resp.Grants, 1)
	s.Equal(active.ID, resp.Grants[0].ID)

	s.Require().Len(resp.Services, 1)
	row := resp.Services[0]
	s.True(row.IsAnyExpired)
	s.Equal(5, row.TotalCredits)
	s.Equal(5, row.RemainingCredits)

	// With includeExpired the raw list carries both grants; totals and
	// the flag are unchanged.
	resp, err = s.service.GetCustomerCredits(s.GetContext(), "cust_1", true)
	s.NoError(err)
	s.Len(resp.Grants, 2)
	s.True(resp.Services[0].IsAnyExpired)
	s.Equal(5, resp.Services[0].RemainingCredits)
}

func (s *CreditGrantServiceSuite) TestAllGrantsExpiredProducesNoRow() {
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 10, RemainingCredits: 10,
		ExpiresAt: &past, IsExpired: true,
	})

	resp, err := s.service.GetCustomerCredits(s.GetContext(), "cust_1", true)
	s.NoError(err)
	s.Empty(resp.Services)
}

func (s *CreditGrantServiceSuite) TestSummaryCountsDistinctPurchases() {
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Facial Treatment",
		TotalCredits: 10, RemainingCredits: 6, UsedCredits: 4,
	})
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Hair Spa",
		TotalCredits: 5, RemainingCredits: 5,
	})
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_2", ServiceName: "Massage",
		TotalCredits: 8, RemainingCredits: 8,
	})

	summary, err := s.service.GetCustomerCreditSummary(s.GetContext(), "cust_1")
	s.NoError(err)
	s.Equal(2, summary.ActivePackages)
	s.Equal(23, summary.TotalCredits)
	s.Equal(19, summary.RemainingCredits)
	s.Equal(4, summary.UsedCredits)
}

func (s *CreditGrantServiceSuite) TestConsumeFromEarliestExpiringGrant() {
	expSoon := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	expLater := time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC)

	soon := s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5, ExpiresAt: &expSoon,
	})
	later := s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_2", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5, ExpiresAt: &expLater,
	})
	perpetual := s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_3", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5,
	})

	resp, err := s.service.ConsumeCredit(s.GetContext(), &dto.ConsumeCreditRequest{
		CustomerID:  "cust_1",
		ServiceName: "Massage",
		Quantity:    2,
	})
	s.NoError(err)
	s.Equal(13, resp.RemainingCredits)

	updated, err := s.GetStores().CreditGrant.Get(s.GetContext(), soon.ID)
	s.NoError(err)
	s.Equal(3, updated.RemainingCredits)
	s.Equal(2, updated.UsedCredits)
	s.Equal(updated.TotalCredits, updated.RemainingCredits+updated.UsedCredits)

	untouched, err := s.GetStores().CreditGrant.Get(s.GetContext(), later.ID)
	s.NoError(err)
	s.Equal(5, untouched.RemainingCredits)

	untouched, err = s.GetStores().CreditGrant.Get(s.GetContext(), perpetual.ID)
	s.NoError(err)
	s.Equal(5, untouched.RemainingCredits)
}

func (s *CreditGrantServiceSuite) TestConsumeInsufficientBalance() {
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 3, RemainingCredits: 3,
	})

	_, err := s.service.ConsumeCredit(s.GetContext(), &dto.ConsumeCreditRequest{
		CustomerID:  "cust_1",
		ServiceName: "Massage",
		Quantity:    4,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CreditGrantServiceSuite) TestConsumeIgnoresExpiredGrants() {
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 10, RemainingCredits: 10,
		ExpiresAt: &past, IsExpired: true,
	})

	_, err := s.service.ConsumeCredit(s.GetContext(), &dto.ConsumeCreditRequest{
		CustomerID:  "cust_1",
		ServiceName: "Massage",
		Quantity:    1,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CreditGrantServiceSuite) TestConsumeRejectsNonPositiveQuantity() {
	_, err := s.service.ConsumeCredit(s.GetContext(), &dto.ConsumeCreditRequest{
		CustomerID:  "cust_1",
		ServiceName: "Massage",
		Quantity:    0,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CreditGrantServiceSuite) TestExpireDueGrants() {
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Now().UTC().Add(365 * 24 * time.Hour)

	due := s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5, ExpiresAt: &past,
	})
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_2", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5, ExpiresAt: &future,
	})
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_3", ServiceName: "Massage",
		TotalCredits: 5, RemainingCredits: 5,
	})

	resp, err := s.service.ExpireDueGrants(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.ExpiredCount)

	expired, err := s.GetStores().CreditGrant.Get(s.GetContext(), due.ID)
	s.NoError(err)
	s.True(expired.IsExpired)

	// Sweep is idempotent; a second run finds nothing due.
	resp, err = s.service.ExpireDueGrants(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.ExpiredCount)
}

func (s *CreditGrantServiceSuite) TestSummaryCacheInvalidatedOnConsume() {
	s.seedGrant(&creditgrant.CreditGrant{
		CustomerID: "cust_1", PurchaseID: "purch_1", ServiceName: "Massage",
		TotalCredits: 10, RemainingCredits: 10,
	})

	summary, err := s.service.GetCustomerCreditSummary(s.GetContext(), "cust_1")
	s.NoError(err)
	s.Equal(10, summary.RemainingCredits)

	_, err = s.service.ConsumeCredit(s.GetContext(), &dto.ConsumeCreditRequest{
		CustomerID:  "cust_1",
		ServiceName: "Massage",
		Quantity:    4,
	})
	s.NoError(err)

	summary, err = s.service.GetCustomerCreditSummary(s.GetContext(), "cust_1")
	s.NoError(err)
	s.Equal(6, summary.RemainingCredits)
	s.Equal(4, summary.UsedCredits)
}
