package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewInvoiceRepository creates a new instance of the invoice repository
func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

const invoiceColumns = `id, organization_id, member_id, amount, invoice_type, invoice_status,
		due_date, reference, kid, description, fiscal_year, metadata, captured_at, cancelled_at,
		status, created_at, updated_at, created_by, updated_by`

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE id = $1
		AND status = $2`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.NewNotFoundError(id)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) FindPending(
	ctx context.Context,
	organizationID string,
	invoiceType types.InvoiceType,
	fiscalYear int,
) ([]*invoice.Invoice, error) {
	// legacy rows carry fiscal_year = 0 and are narrowed by their inferred year below
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE organization_id = $1
		AND invoice_type = $2
		AND invoice_status = $3
		AND created_at < $4
		AND fiscal_year < $5
		AND status = $6
		ORDER BY created_at, id`

	before := types.FiscalYearStart(fiscalYear)
	r.logger.Debugw("finding pending invoices",
		"organization_id", organizationID,
		"invoice_type", invoiceType,
		"fiscal_year", fiscalYear,
		"before", before,
	)

	var invoices []*invoice.Invoice
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query,
		organizationID, invoiceType, types.InvoiceStatusPending, before, fiscalYear, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pending invoices").
			Mark(ierr.ErrDatabase)
	}
	return lo.Filter(invoices, func(inv *invoice.Invoice, _ int) bool {
		return inv.TargetFiscalYear() < fiscalYear
	}), nil
}

func (r *invoiceRepository) FindByFiscalYear(
	ctx context.Context,
	organizationID string,
	invoiceType types.InvoiceType,
	fiscalYear int,
) ([]*invoice.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE organization_id = $1
		AND invoice_type = $2
		AND (fiscal_year = $3 OR fiscal_year = 0)
		AND status = $4`

	var invoices []*invoice.Invoice
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query,
		organizationID, invoiceType, fiscalYear, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices for fiscal year").
			Mark(ierr.ErrDatabase)
	}
	return lo.Filter(invoices, func(inv *invoice.Invoice, _ int) bool {
		return inv.TargetFiscalYear() == fiscalYear
	}), nil
}

func (r *invoiceRepository) Cancel(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE invoices
		SET
			invoice_status = $1,
			cancelled_at = NOW(),
			updated_at = NOW(),
			updated_by = $2
		WHERE id = ANY($3)
		AND invoice_status = $4
		AND status = $5`

	r.logger.Debugw("cancelling invoices", "count", len(ids))

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		types.InvoiceStatusCancelled, types.GetUserID(ctx), pq.Array(ids),
		types.InvoiceStatusPending, types.StatusPublished)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to cancel invoices").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to cancel invoices").
			Mark(ierr.ErrDatabase)
	}
	return int(rows), nil
}

func (r *invoiceRepository) CreateMany(ctx context.Context, invoices []*invoice.Invoice) (int, error) {
	if len(invoices) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (organization_id, member_id, invoice_type, fiscal_year) WHERE fiscal_year > 0 DO NOTHING`

	created := 0
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		for _, inv := range invoices {
			result, err := q.ExecContext(ctx, query,
				inv.ID, inv.OrganizationID, inv.MemberID, inv.Amount, inv.InvoiceType, inv.InvoiceStatus,
				inv.DueDate, inv.Reference, inv.KID, inv.Description, inv.FiscalYear, inv.Metadata,
				inv.CapturedAt, inv.CancelledAt,
				inv.Status, inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy, inv.UpdatedBy,
			)
			if err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create invoices").
					WithReportableDetails(map[string]any{
						"invoice_id": inv.ID,
						"member_id":  inv.MemberID,
					}).
					Mark(ierr.ErrDatabase)
			}
			rows, err := result.RowsAffected()
			if err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create invoices").
					Mark(ierr.ErrDatabase)
			}
			created += int(rows)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Debugw("created invoices",
		"requested", len(invoices),
		"created", created,
	)
	return created, nil
}

func (r *invoiceRepository) MarkCaptured(ctx context.Context, id string, capturedAt time.Time) error {
	query := `
		UPDATE invoices
		SET
			invoice_status = $1,
			captured_at = $2,
			updated_at = NOW(),
			updated_by = $3
		WHERE id = $4
		AND invoice_status = $5
		AND status = $6`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		types.InvoiceStatusCaptured, capturedAt, types.GetUserID(ctx),
		id, types.InvoiceStatusPending, types.StatusPublished)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to capture invoice").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to capture invoice").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return invoice.NewNotPendingError(id)
	}
	return nil
}
