package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/feeledger/internal/domain/account"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountRowColumns = []string{
	"organization_id", "balance", "fiscal_year", "plan_name", "account_status", "version",
	"status", "created_at", "updated_at", "created_by", "updated_by",
}

func accountRow(balance string, fiscalYear, version int64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(accountRowColumns).AddRow(
		"org_1", balance, fiscalYear, "standard", "pending", version,
		"published", now, now, types.DefaultUserID, types.DefaultUserID,
	)
}

func TestAccountRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	mock.ExpectQuery("SELECT (.+) FROM subscription_accounts").
		WithArgs("org_1", types.StatusPublished).
		WillReturnRows(accountRow("990", 2025, 3))

	got, err := repo.Get(context.Background(), "org_1")
	require.NoError(t, err)
	assert.Equal(t, "org_1", got.OrganizationID)
	assert.True(t, decimal.NewFromInt(990).Equal(got.Balance))
	assert.Equal(t, 2025, got.FiscalYear)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, types.SubscriptionAccountStatusPending, got.AccountStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Get_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	mock.ExpectQuery("SELECT (.+) FROM subscription_accounts").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "org_1")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Get_DriverErrorIsWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	mock.ExpectQuery("SELECT (.+) FROM subscription_accounts").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.Get(context.Background(), "org_1")
	require.Error(t, err)
	assert.True(t, ierr.IsDatabase(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	mock.ExpectExec("INSERT INTO subscription_accounts").
		WillReturnError(&pq.Error{Code: "23505"})

	a := account.New(context.Background(), "org_1", "standard", decimal.NewFromInt(990), 2025)
	err := repo.Create(context.Background(), a)
	require.Error(t, err)
	assert.True(t, ierr.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CompareAndSwap(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	a := account.New(context.Background(), "org_1", "standard", decimal.NewFromInt(790), 2025)
	a.Version = 4

	mock.ExpectExec("UPDATE subscription_accounts").
		WithArgs(a.Balance, 2025, "standard", types.SubscriptionAccountStatusPending,
			sqlmock.AnyArg(), "org_1", 4, types.StatusPublished).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CompareAndSwap(context.Background(), a))
	assert.Equal(t, 5, a.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CompareAndSwap_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	a := account.New(context.Background(), "org_1", "standard", decimal.NewFromInt(790), 2025)
	a.Version = 4

	mock.ExpectExec("UPDATE subscription_accounts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM subscription_accounts").
		WillReturnRows(accountRow("990", 2025, 5))

	err := repo.CompareAndSwap(context.Background(), a)
	require.Error(t, err)
	assert.True(t, ierr.IsVersionConflict(err))
	assert.Equal(t, 4, a.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CompareAndSwap_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	a := account.New(context.Background(), "org_1", "standard", decimal.NewFromInt(790), 2025)

	mock.ExpectExec("UPDATE subscription_accounts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM subscription_accounts").
		WillReturnError(sql.ErrNoRows)

	err := repo.CompareAndSwap(context.Background(), a)
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CompareAndSwap_RejectsNegativeBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db, logger.NewNopLogger())

	a := account.New(context.Background(), "org_1", "standard", decimal.NewFromInt(-1), 2025)

	err := repo.CompareAndSwap(context.Background(), a)
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
