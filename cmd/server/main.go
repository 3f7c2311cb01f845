package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/paper-indonesia/circe-credits/internal/api"
	"github.com/paper-indonesia/circe-credits/internal/api/cron"
	v1 "github.com/paper-indonesia/circe-credits/internal/api/v1"
	"github.com/paper-indonesia/circe-credits/internal/cache"
	"github.com/paper-indonesia/circe-credits/internal/config"
	"github.com/paper-indonesia/circe-credits/internal/domain/creditgrant"
	"github.com/paper-indonesia/circe-credits/internal/domain/customer"
	"github.com/paper-indonesia/circe-credits/internal/domain/purchase"
	"github.com/paper-indonesia/circe-credits/internal/email"
	"github.com/paper-indonesia/circe-credits/internal/idempotency"
	"github.com/paper-indonesia/circe-credits/internal/integration/paperid"
	"github.com/paper-indonesia/circe-credits/internal/integration/paperid/webhook"
	"github.com/paper-indonesia/circe-credits/internal/logger"
	"github.com/paper-indonesia/circe-credits/internal/postgres"
	"github.com/paper-indonesia/circe-credits/internal/repository"
	"github.com/paper-indonesia/circe-credits/internal/service"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			postgres.NewClient,
			cache.NewInMemoryCache,
			idempotency.NewGenerator,
			email.NewEmailClient,
			email.NewService,
			newPaperClient,

			repository.NewCustomerRepository,
			repository.NewPurchaseRepository,
			repository.NewCreditGrantRepository,

			newServiceParams,
			service.NewCustomerService,
			service.NewPurchaseService,
			service.NewCreditGrantService,

			webhook.NewHandler,
			v1.NewHealthHandler,
			v1.NewCustomerHandler,
			v1.NewPurchaseHandler,
			v1.NewCreditGrantHandler,
			v1.NewWebhookHandler,
			cron.NewCreditExpiryHandler,

			newHandlers,
			api.NewRouter,
		),
		fx.Invoke(initSentry, startServer),
	)

	app.Run()
}

func newPaperClient(cfg *config.Configuration, log *logger.Logger) paperid.PaperClient {
	return paperid.NewClient(cfg.PaperID, log)
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	customerRepo customer.Repository,
	purchaseRepo purchase.Repository,
	creditGrantRepo creditgrant.Repository,
	paperClient paperid.PaperClient,
	emailSender email.Sender,
	summaryCache cache.Cache,
	idempGen *idempotency.Generator,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:          log,
		Config:          cfg,
		CustomerRepo:    customerRepo,
		PurchaseRepo:    purchaseRepo,
		CreditGrantRepo: creditGrantRepo,
		PaperClient:     paperClient,
		EmailSender:     emailSender,
		SummaryCache:    summaryCache,
		Idempotency:     idempGen,
	}
}

func newHandlers(
	health *v1.HealthHandler,
	customer *v1.CustomerHandler,
	purchase *v1.PurchaseHandler,
	creditGrant *v1.CreditGrantHandler,
	webhookHandler *v1.WebhookHandler,
	cronExpiry *cron.CreditExpiryHandler,
) api.Handlers {
	return api.Handlers{
		Health:      health,
		Customer:    customer,
		Purchase:    purchase,
		CreditGrant: creditGrant,
		Webhook:     webhookHandler,
		CronExpiry:  cronExpiry,
	}
}

func initSentry(cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
		return err
	}
	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return nil
}

func startServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Configuration,
	db *postgres.Client,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			if cfg.Sentry.Enabled {
				sentry.Flush(2 * time.Second)
			}
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			return db.Close()
		},
	})
}
