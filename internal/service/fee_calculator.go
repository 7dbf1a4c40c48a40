package service

import (
	"time"

	"github.com/flexprice/feeledger/internal/domain/account"
	"github.com/flexprice/feeledger/internal/domain/allocation"
	"github.com/flexprice/feeledger/internal/domain/plan"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// FeeCalculator splits a payment between the platform subscription debt,
// the transaction fee and the organization payout. It performs no I/O.
type FeeCalculator struct {
	catalog plan.Catalog
	now     func() time.Time
}

func NewFeeCalculator(catalog plan.Catalog) *FeeCalculator {
	return &FeeCalculator{
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a calculator that reads the current fiscal year from now
func (c *FeeCalculator) WithClock(now func() time.Time) *FeeCalculator {
	return &FeeCalculator{catalog: c.catalog, now: now}
}

// Allocate computes the split of payment against a. The input account is never
// modified; the returned account carries the new balance and fiscal year.
func (c *FeeCalculator) Allocate(a *account.SubscriptionAccount, payment decimal.Decimal) (*allocation.Result, *account.SubscriptionAccount, error) {
	if !payment.IsPositive() {
		return nil, nil, ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"payment_amount": payment.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if a == nil {
		return nil, nil, ierr.NewError("subscription account not found").
			WithHint("The organization has no subscription account").
			Mark(ierr.ErrNotFound)
	}

	p, err := c.catalog.GetPlan(a.PlanName)
	if err != nil {
		return nil, nil, err
	}

	updated := a.Copy()
	currentYear := types.FiscalYearOf(c.now())
	rolledOver := false
	if updated.IsStale(currentYear) {
		updated.ResetForYear(p.AnnualPrice, currentYear)
		rolledOver = true
	}

	balance := updated.Balance
	result := &allocation.Result{
		PaymentAmount: payment,
		RolledOver:    rolledOver,
		BalanceBefore: balance,
		FiscalYear:    updated.FiscalYear,
	}

	if balance.IsPositive() {
		// the remainder of a payment that settles the annual fee is exempt from transaction fees
		result.PlatformFeeAmount = decimal.Min(payment, balance)
		result.TransactionFeeAmount = decimal.Zero
		result.NetPayoutAmount = payment.Sub(result.PlatformFeeAmount)
		if result.PlatformFeeAmount.Equal(balance) {
			result.Phase = types.AllocationPhaseAnnualFeeComplete
		} else {
			result.Phase = types.AllocationPhaseCoveringAnnualFee
		}
	} else {
		result.PlatformFeeAmount = decimal.Zero
		result.TransactionFeeAmount = p.TransactionFee(payment)
		result.NetPayoutAmount = payment.Sub(result.TransactionFeeAmount)
		result.Phase = types.AllocationPhaseStandardTransaction
	}

	updated.Balance = decimal.Max(decimal.Zero, balance.Sub(result.PlatformFeeAmount))
	if updated.IsSettled() {
		updated.AccountStatus = types.SubscriptionAccountStatusActive
	}
	result.BalanceAfter = updated.Balance

	if !result.Balanced() {
		return nil, nil, ierr.NewError("allocation does not add up to the payment").
			WithHint("Payment allocation failed").
			WithReportableDetails(map[string]any{
				"payment_amount":         payment.String(),
				"platform_fee_amount":    result.PlatformFeeAmount.String(),
				"transaction_fee_amount": result.TransactionFeeAmount.String(),
				"net_payout_amount":      result.NetPayoutAmount.String(),
			}).
			Mark(ierr.ErrSystem)
	}

	return result, updated, nil
}
