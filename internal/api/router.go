package api

import (
	"github.com/flexprice/feeledger/internal/api/cron"
	v1 "github.com/flexprice/feeledger/internal/api/v1"
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/rest/middleware"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Account    *v1.AccountHandler
	Allocation *v1.AllocationHandler
	Renewal    *v1.RenewalHandler
	Invoice    *v1.InvoiceHandler

	// Cron jobs
	CronRenewal *cron.RenewalHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	organizations := router.Group("/organizations/:org_id")
	{
		organizations.GET("/subscription-account", handlers.Account.GetSubscriptionAccount)
		organizations.POST("/allocations/preview", handlers.Allocation.PreviewAllocation)
		organizations.POST("/allocations", handlers.Allocation.AllocatePayment)
		organizations.GET("/allocations", handlers.Allocation.ListAllocations)
		organizations.POST("/renewals", handlers.Renewal.RunRenewal)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("/:id/capture", handlers.Invoice.CaptureInvoice)
	}

	cronGroup := router.Group("/cron")
	{
		cronGroup.POST("/renewals", handlers.CronRenewal.RenewAll)
	}
}
