package dto

import (
	"time"

	"github.com/flexprice/feeledger/internal/domain/account"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// SubscriptionAccountResponse is an organization's platform subscription debt
type SubscriptionAccountResponse struct {
	OrganizationID string                          `json:"organization_id"`
	Balance        decimal.Decimal                 `json:"balance"`
	FiscalYear     int                             `json:"fiscal_year"`
	PlanName       string                          `json:"plan_name"`
	AccountStatus  types.SubscriptionAccountStatus `json:"account_status"`
	Version        int                             `json:"version"`
	UpdatedAt      time.Time                       `json:"updated_at"`
}

func NewSubscriptionAccountResponse(a *account.SubscriptionAccount) *SubscriptionAccountResponse {
	if a == nil {
		return nil
	}
	return &SubscriptionAccountResponse{
		OrganizationID: a.OrganizationID,
		Balance:        a.Balance,
		FiscalYear:     a.FiscalYear,
		PlanName:       a.PlanName,
		AccountStatus:  a.AccountStatus,
		Version:        a.Version,
		UpdatedAt:      a.UpdatedAt,
	}
}
