package repository

import (
	"github.com/flexprice/feeledger/internal/cache"
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/domain/account"
	"github.com/flexprice/feeledger/internal/domain/allocation"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/domain/member"
	"github.com/flexprice/feeledger/internal/domain/organization"
	"github.com/flexprice/feeledger/internal/domain/unpaidyears"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	postgresRepo "github.com/flexprice/feeledger/internal/repository/postgres"
)

func NewAccountRepository(db *postgres.DB, logger *logger.Logger) account.Repository {
	return postgresRepo.NewAccountRepository(db, logger)
}

func NewOrganizationRepository(db *postgres.DB, logger *logger.Logger, c *cache.InMemoryCache) organization.Repository {
	return postgresRepo.NewOrganizationRepository(db, logger, c)
}

func NewMemberRepository(db *postgres.DB, logger *logger.Logger) member.Repository {
	return postgresRepo.NewMemberRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewUnpaidYearsRepository(db *postgres.DB, logger *logger.Logger) unpaidyears.Repository {
	return postgresRepo.NewUnpaidYearsRepository(db, logger)
}

func NewAllocationRepository(db *postgres.DB, logger *logger.Logger) allocation.Repository {
	return postgresRepo.NewAllocationRepository(db, logger)
}

func NewReferenceGenerator(db *postgres.DB, cfg *config.Configuration) invoice.ReferenceGenerator {
	return postgresRepo.NewReferenceGenerator(db, cfg)
}
