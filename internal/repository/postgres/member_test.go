package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberRowColumns = []string{
	"id", "organization_id", "name", "member_status", "membership_type_id", "membership_type_fee",
	"status", "created_at", "updated_at", "created_by", "updated_by",
}

func TestMemberRepository_ListActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db, logger.NewNopLogger())
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) mt.fee AS membership_type_fee(.+) FROM members m LEFT JOIN membership_types mt ON mt.id = m.membership_type_id AND mt.status = \$3 WHERE m.organization_id = \$1 AND m.member_status = \$2 AND m.status = \$3`).
		WithArgs("org_1", types.MemberStatusActive, types.StatusPublished).
		WillReturnRows(sqlmock.NewRows(memberRowColumns).
			AddRow("m1", "org_1", "Default Fee", "active", nil, nil, "published", now, now, "", "").
			AddRow("m2", "org_1", "Reduced Fee", "active", "type_reduced", "300.50", "published", now, now, "", "").
			// membership type soft deleted, so the join yields no fee
			AddRow("m3", "org_1", "Orphaned Type", "active", "type_gone", nil, "published", now, now, "", "").
			AddRow("m4", "org_1", "Free Type", "active", "type_free", "0", "published", now, now, "", ""))

	got, err := repo.ListActive(context.Background(), "org_1")
	require.NoError(t, err)
	require.Len(t, got, 4)

	defaultFee := decimal.NewFromInt(450)
	tests := []struct {
		memberID string
		fee      string
	}{
		{"m1", "450"},
		{"m2", "300.50"},
		{"m3", "450"},
		{"m4", "0"},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.memberID, got[i].ID)
		fee, _ := got[i].ResolveFee(defaultFee)
		assert.True(t, decimal.RequireFromString(tt.fee).Equal(fee), "member %s fee %s", tt.memberID, fee)
	}

	assert.Nil(t, got[0].MembershipTypeID)
	assert.False(t, got[0].MembershipTypeFee.Valid)
	require.NotNil(t, got[1].MembershipTypeID)
	assert.Equal(t, "type_reduced", *got[1].MembershipTypeID)
	assert.True(t, got[1].MembershipTypeFee.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_ListActive_Error(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMemberRepository(db, logger.NewNopLogger())

	mock.ExpectQuery("SELECT (.+) FROM members").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListActive(context.Background(), "org_1")
	require.Error(t, err)
	assert.True(t, ierr.IsDatabase(err))
	assert.Equal(t, "org_1", ierr.ReportableDetails(err)["organization_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
