package service

import (
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/domain/account"
	"github.com/flexprice/feeledger/internal/domain/allocation"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/domain/member"
	"github.com/flexprice/feeledger/internal/domain/organization"
	"github.com/flexprice/feeledger/internal/domain/plan"
	"github.com/flexprice/feeledger/internal/domain/unpaidyears"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Sentry *sentry.Service

	// Repositories
	AccountRepo      account.Repository
	OrganizationRepo organization.Repository
	MemberRepo       member.Repository
	InvoiceRepo      invoice.Repository
	UnpaidYearsRepo  unpaidyears.Repository
	AllocationRepo   allocation.Repository

	PlanCatalog plan.Catalog
	References  invoice.ReferenceGenerator
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	sentry *sentry.Service,
	accountRepo account.Repository,
	organizationRepo organization.Repository,
	memberRepo member.Repository,
	invoiceRepo invoice.Repository,
	unpaidYearsRepo unpaidyears.Repository,
	allocationRepo allocation.Repository,
	planCatalog plan.Catalog,
	references invoice.ReferenceGenerator,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Sentry:           sentry,
		AccountRepo:      accountRepo,
		OrganizationRepo: organizationRepo,
		MemberRepo:       memberRepo,
		InvoiceRepo:      invoiceRepo,
		UnpaidYearsRepo:  unpaidYearsRepo,
		AllocationRepo:   allocationRepo,
		PlanCatalog:      planCatalog,
		References:       references,
	}
}
