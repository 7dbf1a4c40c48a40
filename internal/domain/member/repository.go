package member

import "context"

// Repository defines the read side of the member directory
type Repository interface {
	// ListActive returns members that are neither soft-deleted nor marked inactive,
	// with their membership type fee joined in
	ListActive(ctx context.Context, organizationID string) ([]*Member, error)
}
