package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/flexprice/feeledger/internal/domain/unpaidyears"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/postgres"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type unpaidYearsRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewUnpaidYearsRepository creates a new instance of the unpaid years repository
func NewUnpaidYearsRepository(db *postgres.DB, logger *logger.Logger) unpaidyears.Repository {
	return &unpaidYearsRepository{
		db:     db,
		logger: logger,
	}
}

type unpaidYearsRow struct {
	OrganizationID string        `db:"organization_id"`
	MemberID       string        `db:"member_id"`
	Years          pq.Int64Array `db:"years"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func (row *unpaidYearsRow) toDomain() *unpaidyears.UnpaidYears {
	return &unpaidyears.UnpaidYears{
		OrganizationID: row.OrganizationID,
		MemberID:       row.MemberID,
		Years:          unpaidyears.Merge(lo.Map(row.Years, func(y int64, _ int) int { return int(y) })),
		UpdatedAt:      row.UpdatedAt,
	}
}

// AddYears upserts the member row and merges the years in SQL so concurrent
// writers never drop each other's entries.
func (r *unpaidYearsRepository) AddYears(ctx context.Context, organizationID, memberID string, years []int) error {
	if len(years) == 0 {
		return nil
	}

	query := `
		INSERT INTO unpaid_years (organization_id, member_id, years, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (organization_id, member_id) DO UPDATE
		SET
			years = ARRAY(
				SELECT DISTINCT y
				FROM unnest(unpaid_years.years || EXCLUDED.years) AS y
				ORDER BY y
			),
			updated_at = NOW()`

	sorted := unpaidyears.Merge(nil, years...)
	arg := pq.Int64Array(lo.Map(sorted, func(y int, _ int) int64 { return int64(y) }))

	r.logger.Debugw("recording unpaid years",
		"organization_id", organizationID,
		"member_id", memberID,
		"years", sorted,
	)

	if _, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, organizationID, memberID, arg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record unpaid years").
			WithReportableDetails(map[string]any{
				"organization_id": organizationID,
				"member_id":       memberID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *unpaidYearsRepository) Get(ctx context.Context, organizationID, memberID string) (*unpaidyears.UnpaidYears, error) {
	query := `
		SELECT organization_id, member_id, years, updated_at
		FROM unpaid_years
		WHERE organization_id = $1
		AND member_id = $2`

	var row unpaidYearsRow
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, organizationID, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &unpaidyears.UnpaidYears{
				OrganizationID: organizationID,
				MemberID:       memberID,
				Years:          []int{},
			}, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load unpaid years").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}
