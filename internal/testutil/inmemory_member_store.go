package testutil

import (
	"context"

	"github.com/flexprice/feeledger/internal/domain/member"
)

var _ member.Repository = (*InMemoryMemberStore)(nil)

type InMemoryMemberStore struct {
	*InMemoryStore[*member.Member]
}

func NewInMemoryMemberStore() *InMemoryMemberStore {
	return &InMemoryMemberStore{
		InMemoryStore: NewInMemoryStore[*member.Member](),
	}
}

// Create seeds a member
func (s *InMemoryMemberStore) Create(ctx context.Context, m *member.Member) error {
	return s.InMemoryStore.Create(ctx, m.ID, m)
}

func (s *InMemoryMemberStore) ListActive(ctx context.Context, organizationID string) ([]*member.Member, error) {
	return s.InMemoryStore.List(ctx,
		func(_ context.Context, m *member.Member) bool {
			return m.OrganizationID == organizationID && m.IsActive()
		},
		func(i, j *member.Member) bool { return i.ID < j.ID },
	), nil
}
