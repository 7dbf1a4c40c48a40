package allocation

import "context"

// Repository defines the interface for the fee allocation ledger
type Repository interface {
	Create(ctx context.Context, a *FeeAllocation) error
	ListByOrganization(ctx context.Context, organizationID string, fiscalYear int) ([]*FeeAllocation, error)
}
