package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var invoiceRowColumns = []string{
	"id", "organization_id", "member_id", "amount", "invoice_type", "invoice_status",
	"due_date", "reference", "kid", "description", "fiscal_year", "metadata", "captured_at", "cancelled_at",
	"status", "created_at", "updated_at", "created_by", "updated_by",
}

func draftInvoices(n int) []*invoice.Invoice {
	ctx := context.Background()
	due := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	out := make([]*invoice.Invoice, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, invoice.NewMembershipFeeInvoice(ctx, "org_1", types.GenerateUUID(),
			decimal.NewFromInt(500), 2025, due, "000000001", "0000000018"))
	}
	return out
}

func TestInvoiceRepository_FindPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepository(db, logger.NewNopLogger())

	before := types.FiscalYearStart(2025)
	created := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	issuedEarly := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM invoices (.+) AND created_at < \$4\s+AND fiscal_year < \$5`).
		WithArgs("org_1", types.InvoiceTypeMembershipFee, types.InvoiceStatusPending, before, 2025, types.StatusPublished).
		WillReturnRows(sqlmock.NewRows(invoiceRowColumns).
			AddRow(
				"inv_1", "org_1", "mem_1", "500", "membership_fee", "pending",
				created, "000000001", "0000000018", "Membership fee 2024", int64(0), []byte(`{"fiscal_year":"2024"}`), nil, nil,
				"published", created, created, "", "",
			).
			// legacy row issued in December for the year being renewed
			AddRow(
				"inv_2", "org_1", "mem_2", "500", "membership_fee", "pending",
				issuedEarly, "000000002", "0000000026", "Membership fee 2025", int64(0), []byte(`{}`), nil, nil,
				"published", issuedEarly, issuedEarly, "", "",
			))

	got, err := repo.FindPending(context.Background(), "org_1", types.InvoiceTypeMembershipFee, 2025)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "inv_1", got[0].ID)
	assert.Equal(t, 2024, got[0].TargetFiscalYear())
	assert.Nil(t, got[0].CapturedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_FindByFiscalYear_MatchesLegacyRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepository(db, logger.NewNopLogger())

	created := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	older := time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM invoices (.+) AND \(fiscal_year = \$3 OR fiscal_year = 0\)`).
		WithArgs("org_1", types.InvoiceTypeMembershipFee, 2025, types.StatusPublished).
		WillReturnRows(sqlmock.NewRows(invoiceRowColumns).
			AddRow(
				"inv_typed", "org_1", "mem_1", "500", "membership_fee", "pending",
				created, "000000001", "0000000018", "Membership fee 2025", int64(2025), []byte(`{}`), nil, nil,
				"published", created, created, "", "",
			).
			AddRow(
				"inv_legacy", "org_1", "mem_2", "500", "membership_fee", "captured",
				created, "000000002", "0000000026", "Membership fee 2025", int64(0), []byte(`{}`), created, nil,
				"published", created, created, "", "",
			).
			AddRow(
				"inv_old", "org_1", "mem_3", "500", "membership_fee", "cancelled",
				older, "000000003", "0000000034", "Membership fee 2023", int64(0), []byte(`{}`), nil, older,
				"published", older, older, "", "",
			))

	got, err := repo.FindByFiscalYear(context.Background(), "org_1", types.InvoiceTypeMembershipFee, 2025)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, inv := range got {
		ids = append(ids, inv.ID)
	}
	assert.ElementsMatch(t, []string{"inv_typed", "inv_legacy"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepository(db, logger.NewNopLogger())

	mock.ExpectQuery("SELECT (.+) FROM invoices").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "inv_missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_Cancel(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepository(db, logger.NewNopLogger())

	mock.ExpectExec("UPDATE invoices").
		WithArgs(types.InvoiceStatusCancelled, sqlmock.AnyArg(), sqlmock.AnyArg(),
			types.InvoiceStatusPending, types.StatusPublished).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.Cancel(context.Background(), []string{"inv_1", "inv_2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_Cancel_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepository(db, logger.NewNopLogger())

	n, err := repo.Cancel(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_CreateMany_SkipsConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepository(db, logger.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.CreateMany(context.Background(), draftInvoices(3))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_CreateMany_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepository(db, logger.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO invoices").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	n, err := repo.CreateMany(context.Background(), draftInvoices(2))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, ierr.IsDatabase(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_MarkCaptured_NotPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepository(db, logger.NewNopLogger())
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE invoices").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM invoices").
		WillReturnRows(sqlmock.NewRows(invoiceRowColumns).AddRow(
			"inv_1", "org_1", "mem_1", "500", "membership_fee", "cancelled",
			now, "000000001", "0000000018", "Membership fee 2024", int64(2024), []byte(`{}`), nil, now,
			"published", now, now, "", "",
		))

	err := repo.MarkCaptured(context.Background(), "inv_1", now)
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidOperation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
