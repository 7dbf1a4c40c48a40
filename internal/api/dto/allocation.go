package dto

import (
	"github.com/flexprice/feeledger/internal/domain/allocation"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/shopspring/decimal"
)

// AllocatePaymentRequest is a payment amount to split against an organization's account
type AllocatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r *AllocatePaymentRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ListAllocationsResponse is the allocation ledger of one organization for one fiscal year
type ListAllocationsResponse struct {
	Items []*allocation.FeeAllocation `json:"items"`
	Total int                         `json:"total"`
}

func NewListAllocationsResponse(items []*allocation.FeeAllocation) *ListAllocationsResponse {
	if items == nil {
		items = make([]*allocation.FeeAllocation, 0)
	}
	return &ListAllocationsResponse{
		Items: items,
		Total: len(items),
	}
}
