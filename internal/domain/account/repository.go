package account

import "context"

// Repository defines the interface for subscription account persistence
type Repository interface {
	Create(ctx context.Context, a *SubscriptionAccount) error
	Get(ctx context.Context, organizationID string) (*SubscriptionAccount, error)
	// CompareAndSwap writes balance, fiscal year, plan and status only if the stored
	// version still equals a.Version and the stored fiscal year is not ahead of a.FiscalYear.
	// On success a.Version is advanced; otherwise a version conflict error is returned.
	CompareAndSwap(ctx context.Context, a *SubscriptionAccount) error
}
