package organization

import (
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// Organization is a tenant of the platform that invoices its own members
type Organization struct {
	ID                   string                   `db:"id" json:"id"`
	Name                 string                   `db:"name" json:"name"`
	PlanName             string                   `db:"plan_name" json:"plan_name"`
	DefaultMembershipFee decimal.NullDecimal      `db:"default_membership_fee" json:"default_membership_fee"`
	OrganizationStatus   types.OrganizationStatus `db:"organization_status" json:"organization_status"`
	types.BaseModel
}

// MembershipFee returns the configured default membership fee, if any
func (o *Organization) MembershipFee() (decimal.Decimal, bool) {
	if !o.DefaultMembershipFee.Valid {
		return decimal.Zero, false
	}
	return o.DefaultMembershipFee.Decimal, true
}
