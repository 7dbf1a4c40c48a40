package testutil

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/domain/unpaidyears"
)

var _ unpaidyears.Repository = (*InMemoryUnpaidYearsStore)(nil)

type InMemoryUnpaidYearsStore struct {
	*InMemoryStore[*unpaidyears.UnpaidYears]
}

func NewInMemoryUnpaidYearsStore() *InMemoryUnpaidYearsStore {
	return &InMemoryUnpaidYearsStore{
		InMemoryStore: NewInMemoryStore[*unpaidyears.UnpaidYears](),
	}
}

func unpaidKey(organizationID, memberID string) string {
	return organizationID + ":" + memberID
}

func (s *InMemoryUnpaidYearsStore) AddYears(ctx context.Context, organizationID, memberID string, years []int) error {
	if len(years) == 0 {
		return nil
	}

	s.InMemoryStore.mu.Lock()
	defer s.InMemoryStore.mu.Unlock()

	key := unpaidKey(organizationID, memberID)
	existing, ok := s.items[key]
	if !ok {
		existing = &unpaidyears.UnpaidYears{OrganizationID: organizationID, MemberID: memberID}
	}
	s.items[key] = &unpaidyears.UnpaidYears{
		OrganizationID: organizationID,
		MemberID:       memberID,
		Years:          unpaidyears.Merge(existing.Years, years...),
		UpdatedAt:      time.Now().UTC(),
	}
	return nil
}

func (s *InMemoryUnpaidYearsStore) Get(ctx context.Context, organizationID, memberID string) (*unpaidyears.UnpaidYears, error) {
	u, err := s.InMemoryStore.Get(ctx, unpaidKey(organizationID, memberID))
	if err != nil {
		return &unpaidyears.UnpaidYears{
			OrganizationID: organizationID,
			MemberID:       memberID,
			Years:          []int{},
		}, nil
	}
	c := *u
	c.Years = append([]int{}, u.Years...)
	return &c, nil
}
