package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flexprice/feeledger/internal/domain/account"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
)

type accountRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewAccountRepository creates a new instance of the subscription account repository
func NewAccountRepository(db *postgres.DB, logger *logger.Logger) account.Repository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

const accountColumns = `organization_id, balance, fiscal_year, plan_name, account_status, version,
		status, created_at, updated_at, created_by, updated_by`

func (r *accountRepository) Create(ctx context.Context, a *account.SubscriptionAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO subscription_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	r.logger.Debugw("creating subscription account",
		"organization_id", a.OrganizationID,
		"fiscal_year", a.FiscalYear,
		"plan_name", a.PlanName,
	)

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		a.OrganizationID, a.Balance, a.FiscalYear, a.PlanName, a.AccountStatus, a.Version,
		a.Status, a.CreatedAt, a.UpdatedAt, a.CreatedBy, a.UpdatedBy,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHintf("Organization %s already has a subscription account", a.OrganizationID).
				WithReportableDetails(map[string]any{
					"organization_id": a.OrganizationID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create subscription account").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, organizationID string) (*account.SubscriptionAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM subscription_accounts
		WHERE organization_id = $1
		AND status = $2`

	var a account.SubscriptionAccount
	err := r.db.GetQuerier(ctx).GetContext(ctx, &a, query, organizationID, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Subscription account for organization %s was not found", organizationID).
				WithReportableDetails(map[string]any{
					"organization_id": organizationID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load subscription account").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *accountRepository) CompareAndSwap(ctx context.Context, a *account.SubscriptionAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE subscription_accounts
		SET
			balance = $1,
			fiscal_year = $2,
			plan_name = $3,
			account_status = $4,
			version = version + 1,
			updated_at = NOW(),
			updated_by = $5
		WHERE organization_id = $6
		AND version = $7
		AND fiscal_year <= $2
		AND status = $8`

	r.logger.Debugw("swapping subscription account",
		"organization_id", a.OrganizationID,
		"expected_version", a.Version,
		"fiscal_year", a.FiscalYear,
		"balance", a.Balance.String(),
	)

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		a.Balance, a.FiscalYear, a.PlanName, a.AccountStatus, types.GetUserID(ctx),
		a.OrganizationID, a.Version, types.StatusPublished,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription account").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription account").
			Mark(ierr.ErrDatabase)
	}

	if rows == 0 {
		// either the row is gone or someone else wrote first
		if _, err := r.Get(ctx, a.OrganizationID); err != nil {
			return err
		}
		return ierr.NewError("subscription account version conflict").
			WithHint("The subscription account was changed concurrently").
			WithReportableDetails(map[string]any{
				"organization_id":  a.OrganizationID,
				"expected_version": a.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	a.Version++
	return nil
}
