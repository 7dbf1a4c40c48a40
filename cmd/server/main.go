package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/feeledger/internal/api"
	"github.com/flexprice/feeledger/internal/api/cron"
	v1 "github.com/flexprice/feeledger/internal/api/v1"
	"github.com/flexprice/feeledger/internal/cache"
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/domain/plan"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/repository"
	"github.com/flexprice/feeledger/internal/scheduler"
	"github.com/flexprice/feeledger/internal/sentry"
	"github.com/flexprice/feeledger/internal/service"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/flexprice/feeledger/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			config.NewConfig,

			logger.NewLogger,

			cache.NewInMemoryCache,

			provideDB,
			provideDBClient,
			providePlanCatalog,

			repository.NewAccountRepository,
			repository.NewOrganizationRepository,
			repository.NewMemberRepository,
			repository.NewInvoiceRepository,
			repository.NewUnpaidYearsRepository,
			repository.NewAllocationRepository,
			repository.NewReferenceGenerator,
		),
		sentry.Module(),
	)

	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewBalanceService,
			service.NewPaymentService,
			service.NewRenewalService,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
			scheduler.New,
		),
		fx.Invoke(
			validator.NewValidator,
			start,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideDB(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*postgres.DB, error) {
	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
	return db, nil
}

func provideDBClient(db *postgres.DB, sentryService *sentry.Service, log *logger.Logger) postgres.IClient {
	return postgres.NewSentryClient(db, sentryService, log)
}

func providePlanCatalog(cfg *config.Configuration) (plan.Catalog, error) {
	return plan.NewCatalog(cfg)
}

func provideHandlers(
	logger *logger.Logger,
	balanceService service.BalanceService,
	paymentService service.PaymentService,
	renewalService service.RenewalService,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(),
		Account:     v1.NewAccountHandler(balanceService, logger),
		Allocation:  v1.NewAllocationHandler(balanceService, paymentService, logger),
		Renewal:     v1.NewRenewalHandler(renewalService, logger),
		Invoice:     v1.NewInvoiceHandler(paymentService, logger),
		CronRenewal: cron.NewRenewalHandler(renewalService, logger),
	}
}

func start(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	s *scheduler.Scheduler,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		scheduler.RegisterHooks(lc, s)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeScheduler:
		scheduler.RegisterHooks(lc, s)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
