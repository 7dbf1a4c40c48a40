package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpaidYearsRepository_AddYears_SortsAndDedups(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUnpaidYearsRepository(db, logger.NewNopLogger())

	mock.ExpectExec("INSERT INTO unpaid_years").
		WithArgs("org_1", "mem_1", pq.Int64Array{2023, 2024}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddYears(context.Background(), "org_1", "mem_1", []int{2024, 2023, 2024})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnpaidYearsRepository_AddYears_NoopOnEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUnpaidYearsRepository(db, logger.NewNopLogger())

	require.NoError(t, repo.AddYears(context.Background(), "org_1", "mem_1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnpaidYearsRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUnpaidYearsRepository(db, logger.NewNopLogger())

	mock.ExpectQuery("SELECT (.+) FROM unpaid_years").
		WithArgs("org_1", "mem_1").
		WillReturnRows(sqlmock.NewRows([]string{"organization_id", "member_id", "years", "updated_at"}).
			AddRow("org_1", "mem_1", []byte("{2022,2024}"), time.Now().UTC()))

	got, err := repo.Get(context.Background(), "org_1", "mem_1")
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2024}, got.Years)
	assert.True(t, got.Contains(2024))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnpaidYearsRepository_Get_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUnpaidYearsRepository(db, logger.NewNopLogger())

	mock.ExpectQuery("SELECT (.+) FROM unpaid_years").WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "org_1", "mem_1")
	require.NoError(t, err)
	assert.Empty(t, got.Years)
	assert.NoError(t, mock.ExpectationsWereMet())
}
