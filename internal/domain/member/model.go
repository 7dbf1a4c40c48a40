package member

import (
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// Member is a person invoiced by an organization
type Member struct {
	ID                string              `db:"id" json:"id"`
	OrganizationID    string              `db:"organization_id" json:"organization_id"`
	Name              string              `db:"name" json:"name"`
	MemberStatus      types.MemberStatus  `db:"member_status" json:"member_status"`
	MembershipTypeID  *string             `db:"membership_type_id" json:"membership_type_id,omitempty"`
	MembershipTypeFee decimal.NullDecimal `db:"membership_type_fee" json:"membership_type_fee"`
	types.BaseModel
}

// IsActive reports whether the member should be invoiced
func (m *Member) IsActive() bool {
	return m.Status != types.StatusDeleted && m.MemberStatus != types.MemberStatusInactive
}

// FeeSource tells where a resolved membership fee came from
type FeeSource string

const (
	FeeSourceMembershipType      FeeSource = "membership_type"
	FeeSourceOrganizationDefault FeeSource = "organization_default"
)

// ResolveFee picks the fee a member owes. The membership type fee overrides the
// organization default; no other source is consulted.
func (m *Member) ResolveFee(organizationDefault decimal.Decimal) (decimal.Decimal, FeeSource) {
	if m.MembershipTypeID != nil && m.MembershipTypeFee.Valid {
		return m.MembershipTypeFee.Decimal, FeeSourceMembershipType
	}
	return organizationDefault, FeeSourceOrganizationDefault
}
