package service

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/feeledger/internal/domain/account"
	"github.com/flexprice/feeledger/internal/domain/allocation"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// BalanceService owns the subscription account of each organization
type BalanceService interface {
	GetAccount(ctx context.Context, organizationID string) (*account.SubscriptionAccount, error)
	// CreateAccount opens the account of a newly onboarded organization with the full plan price outstanding
	CreateAccount(ctx context.Context, organizationID string) (*account.SubscriptionAccount, error)
	// PreviewAllocation computes the split of a payment without persisting anything
	PreviewAllocation(ctx context.Context, organizationID string, amount decimal.Decimal) (*allocation.Result, error)
	// ApplyAllocation writes an allocated account back with a compare-and-swap on its version
	ApplyAllocation(ctx context.Context, organizationID string, updated *account.SubscriptionAccount) error
	// AllocatePayment reads, allocates and writes atomically, retrying when another writer wins the race
	AllocatePayment(ctx context.Context, organizationID string, amount decimal.Decimal) (*allocation.Result, error)
}

type balanceService struct {
	ServiceParams
	calculator *FeeCalculator
	newBackOff func() backoff.BackOff
}

func NewBalanceService(params ServiceParams) BalanceService {
	return newBalanceService(params, NewFeeCalculator(params.PlanCatalog))
}

func newBalanceService(params ServiceParams, calculator *FeeCalculator) *balanceService {
	return &balanceService{
		ServiceParams: params,
		calculator:    calculator,
		newBackOff:    defaultConflictBackOff,
	}
}

func (s *balanceService) GetAccount(ctx context.Context, organizationID string) (*account.SubscriptionAccount, error) {
	if organizationID == "" {
		return nil, ierr.NewError("organization_id is required").
			WithHint("Organization ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.AccountRepo.Get(ctx, organizationID)
}

func (s *balanceService) CreateAccount(ctx context.Context, organizationID string) (*account.SubscriptionAccount, error) {
	org, err := s.OrganizationRepo.Get(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	p, err := s.PlanCatalog.GetPlan(org.PlanName)
	if err != nil {
		return nil, err
	}

	a := account.New(ctx, org.ID, p.Name, p.AnnualPrice, types.FiscalYearOf(s.calculator.now()))
	if err := s.AccountRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.Infow("created subscription account",
		"organization_id", a.OrganizationID,
		"plan_name", a.PlanName,
		"fiscal_year", a.FiscalYear,
		"balance", a.Balance.String(),
	)
	return a, nil
}

func (s *balanceService) PreviewAllocation(ctx context.Context, organizationID string, amount decimal.Decimal) (*allocation.Result, error) {
	current, err := s.accountForAllocation(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	result, _, err := s.calculator.Allocate(current, amount)
	return result, err
}

// accountForAllocation loads the account and, when it is about to roll over
// into a new fiscal year, moves it onto the organization's current plan so the
// reset is priced from that plan.
func (s *balanceService) accountForAllocation(ctx context.Context, organizationID string) (*account.SubscriptionAccount, error) {
	current, err := s.GetAccount(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if !current.IsStale(types.FiscalYearOf(s.calculator.now())) {
		return current, nil
	}

	org, err := s.OrganizationRepo.Get(ctx, organizationID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return current, nil
		}
		return nil, err
	}
	if org.PlanName == "" || org.PlanName == current.PlanName {
		return current, nil
	}

	moved := current.Copy()
	moved.PlanName = org.PlanName
	return moved, nil
}

func (s *balanceService) ApplyAllocation(ctx context.Context, organizationID string, updated *account.SubscriptionAccount) error {
	if updated == nil || updated.OrganizationID != organizationID {
		return ierr.NewError("account does not belong to organization").
			WithHint("Subscription account does not match the organization").
			WithReportableDetails(map[string]any{
				"organization_id": organizationID,
			}).
			Mark(ierr.ErrValidation)
	}
	return s.AccountRepo.CompareAndSwap(ctx, updated)
}

func (s *balanceService) AllocatePayment(ctx context.Context, organizationID string, amount decimal.Decimal) (*allocation.Result, error) {
	var result *allocation.Result
	attempts := 0

	err := retryOnConflict(ctx, s.newBackOff(), s.Config.Billing.AllocationMaxRetries, func() error {
		attempts++

		current, err := s.accountForAllocation(ctx, organizationID)
		if err != nil {
			return err
		}

		r, updated, err := s.calculator.Allocate(current, amount)
		if err != nil {
			return err
		}

		if !updated.SameState(current) || updated.AccountStatus != current.AccountStatus {
			if err := s.ApplyAllocation(ctx, organizationID, updated); err != nil {
				if ierr.IsVersionConflict(err) {
					s.Logger.Debugw("subscription account changed concurrently, retrying allocation",
						"organization_id", organizationID,
						"attempt", attempts,
					)
					s.Sentry.AddBreadcrumb("allocation", "subscription account version conflict", map[string]interface{}{
						"organization_id": organizationID,
						"attempt":         attempts,
					})
				}
				return err
			}
		}

		result = r
		return nil
	})
	if err != nil {
		if ierr.IsValidation(err) || ierr.IsNotFound(err) {
			return nil, err
		}

		s.Logger.Errorw("payment allocation failed",
			"organization_id", organizationID,
			"amount", amount.String(),
			"attempts", attempts,
			"error", err,
		)
		s.Sentry.CaptureException(err, map[string]string{
			"organization_id": organizationID,
			"operation":       "allocate_payment",
		})

		return nil, ierr.WithError(err).
			WithHint("Payment allocation failed, it is safe to retry").
			WithReportableDetails(map[string]any{
				"organization_id": organizationID,
				"attempts":        attempts,
			}).
			Mark(allocationFailureMark(err))
	}

	s.Logger.Infow("allocated payment",
		"organization_id", organizationID,
		"amount", amount.String(),
		"phase", result.Phase,
		"platform_fee_amount", result.PlatformFeeAmount.String(),
		"transaction_fee_amount", result.TransactionFeeAmount.String(),
		"net_payout_amount", result.NetPayoutAmount.String(),
		"rolled_over", result.RolledOver,
	)
	return result, nil
}

func allocationFailureMark(err error) error {
	switch {
	case ierr.IsVersionConflict(err):
		return ierr.ErrVersionConflict
	case ierr.IsDatabase(err):
		return ierr.ErrDatabase
	default:
		return ierr.ErrSystem
	}
}
