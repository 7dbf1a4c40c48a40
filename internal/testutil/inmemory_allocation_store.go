package testutil

import (
	"context"

	"github.com/flexprice/feeledger/internal/domain/allocation"
	ierr "github.com/flexprice/feeledger/internal/errors"
)

var _ allocation.Repository = (*InMemoryAllocationStore)(nil)

type InMemoryAllocationStore struct {
	*InMemoryStore[*allocation.FeeAllocation]
}

func NewInMemoryAllocationStore() *InMemoryAllocationStore {
	return &InMemoryAllocationStore{
		InMemoryStore: NewInMemoryStore[*allocation.FeeAllocation](),
	}
}

func (s *InMemoryAllocationStore) Create(ctx context.Context, a *allocation.FeeAllocation) error {
	if a.InvoiceID != nil {
		dup := s.InMemoryStore.List(ctx, func(_ context.Context, existing *allocation.FeeAllocation) bool {
			return existing.InvoiceID != nil && *existing.InvoiceID == *a.InvoiceID
		}, nil)
		if len(dup) > 0 {
			return ierr.NewError("duplicate fee allocation").
				WithHint("This payment has already been allocated").
				Mark(ierr.ErrAlreadyExists)
		}
	}
	return s.InMemoryStore.Create(ctx, a.ID, a)
}

func (s *InMemoryAllocationStore) ListByOrganization(ctx context.Context, organizationID string, fiscalYear int) ([]*allocation.FeeAllocation, error) {
	return s.InMemoryStore.List(ctx,
		func(_ context.Context, a *allocation.FeeAllocation) bool {
			return a.OrganizationID == organizationID && a.FiscalYear == fiscalYear
		},
		func(i, j *allocation.FeeAllocation) bool { return i.CreatedAt.Before(j.CreatedAt) },
	), nil
}
