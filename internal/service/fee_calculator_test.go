package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/feeledger/internal/domain/account"
	"github.com/flexprice/feeledger/internal/domain/plan"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalculator(year int) *FeeCalculator {
	standard := &plan.Plan{
		Name:        "standard",
		AnnualPrice: decimal.NewFromInt(990),
		FixedFee:    decimal.NewFromInt(5),
		PercentFee:  decimal.RequireFromString("0.025"),
	}
	clock := func() time.Time { return time.Date(year, 6, 1, 12, 0, 0, 0, time.UTC) }
	return NewFeeCalculator(plan.NewStaticCatalog(standard)).WithClock(clock)
}

func testAccount(balance string, fiscalYear int) *account.SubscriptionAccount {
	return account.New(context.Background(), "org_1", "standard", decimal.RequireFromString(balance), fiscalYear)
}

func TestFeeCalculator_Allocate(t *testing.T) {
	tests := []struct {
		name           string
		balance        string
		accountYear    int
		payment        string
		wantPlatform   string
		wantTxFee      string
		wantPayout     string
		wantPhase      types.AllocationPhase
		wantBalance    string
		wantYear       int
		wantRolledOver bool
	}{
		{
			name:         "payment partly covers annual fee",
			balance:      "990",
			accountYear:  2025,
			payment:      "200",
			wantPlatform: "200",
			wantTxFee:    "0",
			wantPayout:   "0",
			wantPhase:    types.AllocationPhaseCoveringAnnualFee,
			wantBalance:  "790",
			wantYear:     2025,
		},
		{
			name:         "payment settles annual fee and remainder is paid out without fee",
			balance:      "190",
			accountYear:  2025,
			payment:      "200",
			wantPlatform: "190",
			wantTxFee:    "0",
			wantPayout:   "10",
			wantPhase:    types.AllocationPhaseAnnualFeeComplete,
			wantBalance:  "0",
			wantYear:     2025,
		},
		{
			name:         "payment exactly settles annual fee",
			balance:      "200",
			accountYear:  2025,
			payment:      "200",
			wantPlatform: "200",
			wantTxFee:    "0",
			wantPayout:   "0",
			wantPhase:    types.AllocationPhaseAnnualFeeComplete,
			wantBalance:  "0",
			wantYear:     2025,
		},
		{
			name:         "settled account pays transaction fee",
			balance:      "0",
			accountYear:  2025,
			payment:      "200",
			wantPlatform: "0",
			wantTxFee:    "10",
			wantPayout:   "190",
			wantPhase:    types.AllocationPhaseStandardTransaction,
			wantBalance:  "0",
			wantYear:     2025,
		},
		{
			name:         "transaction fee is rounded to cents",
			balance:      "0",
			accountYear:  2025,
			payment:      "33.33",
			wantPlatform: "0",
			wantTxFee:    "5.83",
			wantPayout:   "27.5",
			wantPhase:    types.AllocationPhaseStandardTransaction,
			wantBalance:  "0",
			wantYear:     2025,
		},
		{
			name:         "transaction fee never exceeds the payment",
			balance:      "0",
			accountYear:  2025,
			payment:      "3",
			wantPlatform: "0",
			wantTxFee:    "3",
			wantPayout:   "0",
			wantPhase:    types.AllocationPhaseStandardTransaction,
			wantBalance:  "0",
			wantYear:     2025,
		},
		{
			name:           "stale settled account rolls over before allocating",
			balance:        "0",
			accountYear:    2024,
			payment:        "200",
			wantPlatform:   "200",
			wantTxFee:      "0",
			wantPayout:     "0",
			wantPhase:      types.AllocationPhaseCoveringAnnualFee,
			wantBalance:    "790",
			wantYear:       2025,
			wantRolledOver: true,
		},
		{
			name:         "account ahead of the clock is not moved back",
			balance:      "990",
			accountYear:  2026,
			payment:      "100",
			wantPlatform: "100",
			wantTxFee:    "0",
			wantPayout:   "0",
			wantPhase:    types.AllocationPhaseCoveringAnnualFee,
			wantBalance:  "890",
			wantYear:     2026,
		},
	}

	calc := testCalculator(2025)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testAccount(tt.balance, tt.accountYear)
			result, updated, err := calc.Allocate(in, decimal.RequireFromString(tt.payment))
			require.NoError(t, err)

			assert.True(t, decimal.RequireFromString(tt.wantPlatform).Equal(result.PlatformFeeAmount), "platform fee %s", result.PlatformFeeAmount)
			assert.True(t, decimal.RequireFromString(tt.wantTxFee).Equal(result.TransactionFeeAmount), "transaction fee %s", result.TransactionFeeAmount)
			assert.True(t, decimal.RequireFromString(tt.wantPayout).Equal(result.NetPayoutAmount), "payout %s", result.NetPayoutAmount)
			assert.Equal(t, tt.wantPhase, result.Phase)
			assert.Equal(t, tt.wantRolledOver, result.RolledOver)
			assert.True(t, decimal.RequireFromString(tt.wantBalance).Equal(updated.Balance), "balance %s", updated.Balance)
			assert.Equal(t, tt.wantYear, updated.FiscalYear)
			assert.True(t, result.Balanced())

			// input is left untouched
			assert.True(t, decimal.RequireFromString(tt.balance).Equal(in.Balance))
			assert.Equal(t, tt.accountYear, in.FiscalYear)
		})
	}
}

func TestFeeCalculator_SettlingMarksAccountActive(t *testing.T) {
	_, updated, err := testCalculator(2025).Allocate(testAccount("50", 2025), decimal.NewFromInt(80))
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionAccountStatusActive, updated.AccountStatus)
}

func TestFeeCalculator_Errors(t *testing.T) {
	calc := testCalculator(2025)

	_, _, err := calc.Allocate(testAccount("990", 2025), decimal.Zero)
	assert.True(t, ierr.IsValidation(err))

	_, _, err = calc.Allocate(testAccount("990", 2025), decimal.NewFromInt(-5))
	assert.True(t, ierr.IsValidation(err))

	_, _, err = calc.Allocate(nil, decimal.NewFromInt(5))
	assert.True(t, ierr.IsNotFound(err))

	unknown := testAccount("990", 2025)
	unknown.PlanName = "enterprise"
	_, _, err = calc.Allocate(unknown, decimal.NewFromInt(5))
	assert.True(t, ierr.IsValidation(err))
}

// Every split adds up to the payment and the balance only ever moves down to zero.
func TestFeeCalculator_ConservesMoney(t *testing.T) {
	calc := testCalculator(2025)
	balances := []string{"0", "0.01", "1", "189.99", "190", "990"}
	payments := []string{"0.01", "0.99", "3", "5.125", "199.995", "200", "1234.56"}

	for _, b := range balances {
		for _, p := range payments {
			payment := decimal.RequireFromString(p)
			in := testAccount(b, 2025)

			result, updated, err := calc.Allocate(in, payment)
			require.NoError(t, err)

			sum := result.PlatformFeeAmount.Add(result.TransactionFeeAmount).Add(result.NetPayoutAmount)
			assert.True(t, sum.Equal(payment), "balance %s payment %s: sum %s", b, p, sum)
			assert.False(t, updated.Balance.IsNegative())

			want := decimal.Max(decimal.Zero, in.Balance.Sub(result.PlatformFeeAmount))
			assert.True(t, want.Equal(updated.Balance))
			assert.False(t, result.NetPayoutAmount.IsNegative())
			assert.GreaterOrEqual(t, updated.FiscalYear, in.FiscalYear)
		}
	}
}
