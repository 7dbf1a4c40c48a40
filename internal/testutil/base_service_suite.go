package testutil

import (
	"context"

	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/domain/organization"
	"github.com/flexprice/feeledger/internal/domain/plan"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/sentry"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/flexprice/feeledger/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the in-memory repositories for testing
type Stores struct {
	AccountRepo      *InMemoryAccountStore
	OrganizationRepo *InMemoryOrganizationStore
	MemberRepo       *InMemoryMemberStore
	InvoiceRepo      *InMemoryInvoiceStore
	UnpaidYearsRepo  *InMemoryUnpaidYearsStore
	AllocationRepo   *InMemoryAllocationStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	db         *MockPostgresClient
	logger     *logger.Logger
	config     *config.Configuration
	catalog    plan.Catalog
	references *CounterReferenceGenerator
	sentry     *sentry.Service
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Billing.RenewalBatchSize = 2
	s.config.Billing.RenewalConcurrency = 2
	s.config.Pricing.Plans["small"] = config.PlanConfig{AnnualPrice: "490", FixedFee: "5", PercentFee: "0.025"}
	s.logger = logger.NewNopLogger()
	s.sentry = sentry.NewSentryService(s.config, s.logger)

	catalog, err := plan.NewCatalog(s.config)
	if err != nil {
		s.T().Fatalf("failed to build plan catalog: %v", err)
	}
	s.catalog = catalog
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		AccountRepo:      NewInMemoryAccountStore(),
		OrganizationRepo: NewInMemoryOrganizationStore(),
		MemberRepo:       NewInMemoryMemberStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		UnpaidYearsRepo:  NewInMemoryUnpaidYearsStore(),
		AllocationRepo:   NewInMemoryAllocationStore(),
	}
	s.db = NewMockPostgresClient(s.logger)
	s.references = NewCounterReferenceGenerator(s.config.Billing.KIDLength)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.AccountRepo.Clear()
	s.stores.OrganizationRepo.Clear()
	s.stores.MemberRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.UnpaidYearsRepo.Clear()
	s.stores.AllocationRepo.Clear()
}

// CreateOrganization seeds an active organization on the standard plan
func (s *BaseServiceTestSuite) CreateOrganization(id string, defaultFee *decimal.Decimal) *organization.Organization {
	o := &organization.Organization{
		ID:                 id,
		Name:               "Organization " + id,
		PlanName:           "standard",
		OrganizationStatus: types.OrganizationStatusActive,
		BaseModel:          types.GetDefaultBaseModel(s.ctx),
	}
	if defaultFee != nil {
		o.DefaultMembershipFee = decimal.NewNullDecimal(*defaultFee)
	}
	s.Require().NoError(s.stores.OrganizationRepo.Create(s.ctx, o))
	return o
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetPlanCatalog returns the plan catalog built from the default pricing config
func (s *BaseServiceTestSuite) GetPlanCatalog() plan.Catalog {
	return s.catalog
}

// GetReferenceGenerator returns the sequential test reference generator
func (s *BaseServiceTestSuite) GetReferenceGenerator() *CounterReferenceGenerator {
	return s.references
}

// GetSentry returns a disabled sentry service
func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}
