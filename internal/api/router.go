package api

import (
	"github.com/gin-gonic/gin"
	"github.com/paper-indonesia/circe-credits/internal/api/cron"
	v1 "github.com/paper-indonesia/circe-credits/internal/api/v1"
	"github.com/paper-indonesia/circe-credits/internal/config"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/rest/middleware"
	"github.com/paper-indonesia/circe-credits/internal/types"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Health      *v1.HealthHandler
	Customer    *v1.CustomerHandler
	Purchase    *v1.PurchaseHandler
	CreditGrant *v1.CreditGrantHandler
	Webhook     *v1.WebhookHandler
	CronExpiry  *cron.CreditExpiryHandler
}

// NewRouter builds the gin engine with the shared middleware chain and
// all route groups.
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandlerMiddleware(log),
	)

	router.GET("/health", handlers.Health.Health)

	// Webhooks skip tenant resolution; the gateway does not send our
	// headers and the purchase row carries the tenant.
	webhooks := router.Group("/v1/webhooks")
	{
		webhooks.POST("/paperid", handlers.Webhook.HandlePaperWebhook)
	}

	private := router.Group("/v1")
	private.Use(middleware.TenantMiddleware)
	{
		customers := private.Group("/customers")
		{
			customers.POST("", handlers.Customer.CreateCustomer)
			customers.GET("", handlers.Customer.ListCustomers)
			customers.GET("/:id", handlers.Customer.GetCustomer)
			customers.GET("/:id/credits", handlers.CreditGrant.GetCustomerCredits)
			customers.GET("/:id/credits/summary", handlers.CreditGrant.GetCustomerCreditSummary)
			customers.GET("/:id/purchases/pending", handlers.Purchase.ListActionablePending)
		}

		purchases := private.Group("/purchases")
		{
			purchases.POST("", handlers.Purchase.CreatePurchase)
			purchases.GET("/:id", handlers.Purchase.GetPurchase)
			purchases.POST("/:id/confirm-payment", handlers.Purchase.ConfirmPayment)
			purchases.POST("/:id/invoice", handlers.Purchase.IssueInvoice)
		}

		credits := private.Group("/credits")
		{
			credits.POST("/consume", handlers.CreditGrant.ConsumeCredit)
		}

		cronRoutes := private.Group("/cron")
		{
			cronRoutes.POST("/credits/expire", handlers.CronExpiry.ExpireCredits)
		}
	}

	return router
}
