package service

import (
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/testutil"
)

func newTestServiceParams(s *testutil.BaseServiceTestSuite, cfg *config.Configuration) ServiceParams {
	if cfg == nil {
		cfg = s.GetConfig()
	}
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           cfg,
		DB:               s.GetDB(),
		Sentry:           s.GetSentry(),
		AccountRepo:      stores.AccountRepo,
		OrganizationRepo: stores.OrganizationRepo,
		MemberRepo:       stores.MemberRepo,
		InvoiceRepo:      stores.InvoiceRepo,
		UnpaidYearsRepo:  stores.UnpaidYearsRepo,
		AllocationRepo:   stores.AllocationRepo,
		PlanCatalog:      s.GetPlanCatalog(),
		References:       s.GetReferenceGenerator(),
	}
}

func copyConfig(cfg *config.Configuration) *config.Configuration {
	c := *cfg
	return &c
}
