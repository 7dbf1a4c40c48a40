package allocation

import (
	"context"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// Result is how a single payment is split. It is derived, never stored on its own.
type Result struct {
	PaymentAmount        decimal.Decimal       `json:"payment_amount"`
	PlatformFeeAmount    decimal.Decimal       `json:"platform_fee_amount"`
	TransactionFeeAmount decimal.Decimal       `json:"transaction_fee_amount"`
	NetPayoutAmount      decimal.Decimal       `json:"net_payout_amount"`
	Phase                types.AllocationPhase `json:"phase"`
	// RolledOver is set when the account was stale and reset to the full plan price first
	RolledOver    bool            `json:"rolled_over"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	FiscalYear    int             `json:"fiscal_year"`
}

// Balanced reports whether the three parts add up to the payment exactly
func (r *Result) Balanced() bool {
	return r.PlatformFeeAmount.
		Add(r.TransactionFeeAmount).
		Add(r.NetPayoutAmount).
		Equal(r.PaymentAmount)
}

// FeeAllocation is the ledger row recording how a captured payment was split
type FeeAllocation struct {
	ID                   string                `db:"id" json:"id"`
	OrganizationID       string                `db:"organization_id" json:"organization_id"`
	InvoiceID            *string               `db:"invoice_id" json:"invoice_id,omitempty"`
	PaymentAmount        decimal.Decimal       `db:"payment_amount" json:"payment_amount"`
	PlatformFeeAmount    decimal.Decimal       `db:"platform_fee_amount" json:"platform_fee_amount"`
	TransactionFeeAmount decimal.Decimal       `db:"transaction_fee_amount" json:"transaction_fee_amount"`
	NetPayoutAmount      decimal.Decimal       `db:"net_payout_amount" json:"net_payout_amount"`
	Phase                types.AllocationPhase `db:"phase" json:"phase"`
	FiscalYear           int                   `db:"fiscal_year" json:"fiscal_year"`
	types.BaseModel
}

// NewFeeAllocation builds the ledger row for a computed result
func NewFeeAllocation(ctx context.Context, organizationID string, invoiceID *string, r *Result) *FeeAllocation {
	return &FeeAllocation{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE_ALLOCATION),
		OrganizationID:       organizationID,
		InvoiceID:            invoiceID,
		PaymentAmount:        r.PaymentAmount,
		PlatformFeeAmount:    r.PlatformFeeAmount,
		TransactionFeeAmount: r.TransactionFeeAmount,
		NetPayoutAmount:      r.NetPayoutAmount,
		Phase:                r.Phase,
		FiscalYear:           r.FiscalYear,
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
}
