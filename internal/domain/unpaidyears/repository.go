package unpaidyears

import "context"

// Repository defines the interface for the unpaid years ledger
type Repository interface {
	// AddYears merges years into the member's unpaid set, creating it when missing
	AddYears(ctx context.Context, organizationID, memberID string, years []int) error
	// Get returns the member's unpaid years; a member with none yields an empty set
	Get(ctx context.Context, organizationID, memberID string) (*UnpaidYears, error)
}
