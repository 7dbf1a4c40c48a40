package organization

import "context"

// Repository defines the read side of the organization directory
type Repository interface {
	Get(ctx context.Context, id string) (*Organization, error)
	// ListActiveIDs returns the ids of every organization that should be renewed
	ListActiveIDs(ctx context.Context) ([]string, error)
}
