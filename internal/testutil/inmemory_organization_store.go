package testutil

import (
	"context"

	"github.com/flexprice/feeledger/internal/domain/organization"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
)

var _ organization.Repository = (*InMemoryOrganizationStore)(nil)

type InMemoryOrganizationStore struct {
	*InMemoryStore[*organization.Organization]
}

func NewInMemoryOrganizationStore() *InMemoryOrganizationStore {
	return &InMemoryOrganizationStore{
		InMemoryStore: NewInMemoryStore[*organization.Organization](),
	}
}

// Create seeds an organization
func (s *InMemoryOrganizationStore) Create(ctx context.Context, o *organization.Organization) error {
	return s.InMemoryStore.Create(ctx, o.ID, o)
}

func (s *InMemoryOrganizationStore) Get(ctx context.Context, id string) (*organization.Organization, error) {
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || o.Status != types.StatusPublished {
		return nil, ierr.NewError("organization not found").
			WithHintf("Organization %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	c := *o
	return &c, nil
}

func (s *InMemoryOrganizationStore) ListActiveIDs(ctx context.Context) ([]string, error) {
	orgs := s.InMemoryStore.List(ctx,
		func(_ context.Context, o *organization.Organization) bool {
			return o.Status == types.StatusPublished && o.OrganizationStatus == types.OrganizationStatusActive
		},
		func(i, j *organization.Organization) bool { return i.ID < j.ID },
	)
	return lo.Map(orgs, func(o *organization.Organization, _ int) string { return o.ID }), nil
}
