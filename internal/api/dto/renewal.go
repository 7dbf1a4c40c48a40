package dto

import (
	"github.com/flexprice/feeledger/internal/types"
)

// RunRenewalRequest selects the fiscal year to renew. The current year is used when omitted.
type RunRenewalRequest struct {
	FiscalYear int `json:"fiscal_year,omitempty" validate:"omitempty,min=2000,max=9999"`
}

// TargetYear returns the requested year or the current fiscal year
func (r *RunRenewalRequest) TargetYear() int {
	if r.FiscalYear == 0 {
		return types.CurrentFiscalYear()
	}
	return r.FiscalYear
}
