package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/feeledger/internal/domain/account"
	ierr "github.com/flexprice/feeledger/internal/errors"
)

var _ account.Repository = (*InMemoryAccountStore)(nil)

// InMemoryAccountStore implements account.Repository with the same
// compare-and-swap semantics as the postgres repository
type InMemoryAccountStore struct {
	*InMemoryStore[*account.SubscriptionAccount]

	mu              sync.Mutex
	forcedConflicts int
	swaps           int
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		InMemoryStore: NewInMemoryStore[*account.SubscriptionAccount](),
	}
}

func (s *InMemoryAccountStore) Create(ctx context.Context, a *account.SubscriptionAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, a.OrganizationID, a.Copy())
}

func (s *InMemoryAccountStore) Get(ctx context.Context, organizationID string) (*account.SubscriptionAccount, error) {
	a, err := s.InMemoryStore.Get(ctx, organizationID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Subscription account for organization %s was not found", organizationID).
			Mark(ierr.ErrNotFound)
	}
	return a.Copy(), nil
}

func (s *InMemoryAccountStore) CompareAndSwap(ctx context.Context, a *account.SubscriptionAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.forcedConflicts > 0 {
		s.forcedConflicts--
		s.mu.Unlock()
		return versionConflict(a)
	}
	s.mu.Unlock()

	err := s.InMemoryStore.Mutate(ctx, a.OrganizationID, func(stored *account.SubscriptionAccount) (*account.SubscriptionAccount, error) {
		if stored.Version != a.Version || stored.FiscalYear > a.FiscalYear {
			return nil, versionConflict(a)
		}
		next := a.Copy()
		next.Version = stored.Version + 1
		return next, nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.swaps++
	s.mu.Unlock()

	a.Version++
	return nil
}

// ForceConflicts makes the next n swaps fail as if another writer got there first
func (s *InMemoryAccountStore) ForceConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forcedConflicts = n
}

// Swaps returns how many writes succeeded
func (s *InMemoryAccountStore) Swaps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swaps
}

func (s *InMemoryAccountStore) Clear() {
	s.InMemoryStore.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forcedConflicts = 0
	s.swaps = 0
}

func versionConflict(a *account.SubscriptionAccount) error {
	return ierr.NewError("subscription account version conflict").
		WithHint("The subscription account was changed concurrently").
		WithReportableDetails(map[string]any{
			"organization_id":  a.OrganizationID,
			"expected_version": a.Version,
		}).
		Mark(ierr.ErrVersionConflict)
}
