package account

import (
	"context"
	"time"

	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// SubscriptionAccount is an organization's platform subscription debt for one fiscal year.
// There is exactly one account per organization.
type SubscriptionAccount struct {
	OrganizationID string                          `db:"organization_id" json:"organization_id"`
	Balance        decimal.Decimal                 `db:"balance" json:"balance"`
	FiscalYear     int                             `db:"fiscal_year" json:"fiscal_year"`
	PlanName       string                          `db:"plan_name" json:"plan_name"`
	AccountStatus  types.SubscriptionAccountStatus `db:"account_status" json:"account_status"`
	// Version is the optimistic concurrency token, incremented on every write
	Version int `db:"version" json:"version"`
	types.BaseModel
}

// New creates the account for a freshly onboarded organization with the full plan price outstanding
func New(ctx context.Context, organizationID, planName string, planPrice decimal.Decimal, fiscalYear int) *SubscriptionAccount {
	return &SubscriptionAccount{
		OrganizationID: organizationID,
		Balance:        planPrice,
		FiscalYear:     fiscalYear,
		PlanName:       planName,
		AccountStatus:  types.SubscriptionAccountStatusPending,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}

// Copy returns a detached copy of the account
func (a *SubscriptionAccount) Copy() *SubscriptionAccount {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// IsStale reports whether the account still belongs to an earlier fiscal year
func (a *SubscriptionAccount) IsStale(currentFiscalYear int) bool {
	return a.FiscalYear < currentFiscalYear
}

// IsSettled reports whether the annual platform fee has been paid in full
func (a *SubscriptionAccount) IsSettled() bool {
	return a.Balance.IsZero()
}

// SameState reports whether both accounts hold the same balance and fiscal year
func (a *SubscriptionAccount) SameState(other *SubscriptionAccount) bool {
	return a.Balance.Equal(other.Balance) && a.FiscalYear == other.FiscalYear
}

// ResetForYear puts the full plan price back on the account for the given fiscal year
func (a *SubscriptionAccount) ResetForYear(planPrice decimal.Decimal, fiscalYear int) {
	a.Balance = planPrice
	a.FiscalYear = fiscalYear
	a.AccountStatus = types.SubscriptionAccountStatusPending
	a.UpdatedAt = time.Now().UTC()
}

func (a *SubscriptionAccount) Validate() error {
	if a.OrganizationID == "" {
		return ierr.NewError("organization_id is required").
			WithHint("Subscription account must belong to an organization").
			Mark(ierr.ErrValidation)
	}
	if a.Balance.IsNegative() {
		return ierr.NewError("balance cannot be negative").
			WithHint("Subscription account balance cannot be negative").
			WithReportableDetails(map[string]any{
				"organization_id": a.OrganizationID,
				"balance":         a.Balance.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if a.FiscalYear <= 0 {
		return ierr.NewError("fiscal_year must be positive").
			WithHint("Subscription account must carry a fiscal year").
			Mark(ierr.ErrValidation)
	}
	return a.AccountStatus.Validate()
}
