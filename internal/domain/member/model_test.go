package member

import (
	"testing"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolveFee(t *testing.T) {
	orgDefault := decimal.NewFromInt(500)

	tests := []struct {
		name       string
		member     Member
		wantFee    decimal.Decimal
		wantSource FeeSource
	}{
		{
			name:       "no membership type",
			member:     Member{},
			wantFee:    orgDefault,
			wantSource: FeeSourceOrganizationDefault,
		},
		{
			name: "membership type with fee",
			member: Member{
				MembershipTypeID:  lo.ToPtr("mt_student"),
				MembershipTypeFee: decimal.NewNullDecimal(decimal.NewFromInt(250)),
			},
			wantFee:    decimal.NewFromInt(250),
			wantSource: FeeSourceMembershipType,
		},
		{
			name: "membership type without fee",
			member: Member{
				MembershipTypeID: lo.ToPtr("mt_honorary"),
			},
			wantFee:    orgDefault,
			wantSource: FeeSourceOrganizationDefault,
		},
		{
			name: "zero fee membership type is still an override",
			member: Member{
				MembershipTypeID:  lo.ToPtr("mt_free"),
				MembershipTypeFee: decimal.NewNullDecimal(decimal.Zero),
			},
			wantFee:    decimal.Zero,
			wantSource: FeeSourceMembershipType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, source := tt.member.ResolveFee(orgDefault)
			assert.True(t, tt.wantFee.Equal(fee), "got %s want %s", fee, tt.wantFee)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestIsActive(t *testing.T) {
	active := Member{MemberStatus: types.MemberStatusActive, BaseModel: types.BaseModel{Status: types.StatusPublished}}
	inactive := Member{MemberStatus: types.MemberStatusInactive, BaseModel: types.BaseModel{Status: types.StatusPublished}}
	deleted := Member{MemberStatus: types.MemberStatusActive, BaseModel: types.BaseModel{Status: types.StatusDeleted}}

	assert.True(t, active.IsActive())
	assert.False(t, inactive.IsActive())
	assert.False(t, deleted.IsActive())
}
