package postgres

import (
	"context"

	"github.com/flexprice/feeledger/internal/domain/allocation"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
)

type allocationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewAllocationRepository creates a new instance of the fee allocation repository
func NewAllocationRepository(db *postgres.DB, logger *logger.Logger) allocation.Repository {
	return &allocationRepository{
		db:     db,
		logger: logger,
	}
}

const allocationColumns = `id, organization_id, invoice_id, payment_amount, platform_fee_amount,
		transaction_fee_amount, net_payout_amount, phase, fiscal_year,
		status, created_at, updated_at, created_by, updated_by`

func (r *allocationRepository) Create(ctx context.Context, a *allocation.FeeAllocation) error {
	query := `
		INSERT INTO fee_allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		a.ID, a.OrganizationID, a.InvoiceID, a.PaymentAmount, a.PlatformFeeAmount,
		a.TransactionFeeAmount, a.NetPayoutAmount, a.Phase, a.FiscalYear,
		a.Status, a.CreatedAt, a.UpdatedAt, a.CreatedBy, a.UpdatedBy,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("This payment has already been allocated").
				WithReportableDetails(map[string]any{
					"organization_id": a.OrganizationID,
					"invoice_id":      a.InvoiceID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to record fee allocation").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *allocationRepository) ListByOrganization(ctx context.Context, organizationID string, fiscalYear int) ([]*allocation.FeeAllocation, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM fee_allocations
		WHERE organization_id = $1
		AND fiscal_year = $2
		AND status = $3
		ORDER BY created_at, id`

	var allocations []*allocation.FeeAllocation
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &allocations, query,
		organizationID, fiscalYear, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list fee allocations").
			Mark(ierr.ErrDatabase)
	}
	return allocations, nil
}
