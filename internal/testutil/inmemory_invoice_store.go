package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/types"
)

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

// InMemoryInvoiceStore implements invoice.Repository including the
// one-invoice-per-member-and-year uniqueness guard
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]

	mu             sync.Mutex
	createManyHook func(batch []*invoice.Invoice) error
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func yearKey(inv *invoice.Invoice) string {
	return fmt.Sprintf("%s:%s:%s:%d", inv.OrganizationID, inv.MemberID, inv.InvoiceType, inv.FiscalYear)
}

// Seed stores an invoice as is, bypassing the uniqueness guard. Used for legacy rows.
func (s *InMemoryInvoiceStore) Seed(ctx context.Context, inv *invoice.Invoice) error {
	return s.InMemoryStore.Create(ctx, inv.ID, inv)
}

// OnCreateMany installs a hook run before each batch insert; a non-nil error fails the batch
func (s *InMemoryInvoiceStore) OnCreateMany(hook func(batch []*invoice.Invoice) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createManyHook = hook
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, invoice.NewNotFoundError(id)
	}
	c := *inv
	return &c, nil
}

func (s *InMemoryInvoiceStore) FindPending(ctx context.Context, organizationID string, invoiceType types.InvoiceType, fiscalYear int) ([]*invoice.Invoice, error) {
	before := types.FiscalYearStart(fiscalYear)
	return s.InMemoryStore.List(ctx,
		func(_ context.Context, inv *invoice.Invoice) bool {
			return inv.OrganizationID == organizationID &&
				inv.InvoiceType == invoiceType &&
				inv.IsPending() &&
				inv.CreatedAt.Before(before) &&
				inv.TargetFiscalYear() < fiscalYear
		},
		func(i, j *invoice.Invoice) bool { return i.CreatedAt.Before(j.CreatedAt) },
	), nil
}

func (s *InMemoryInvoiceStore) FindByFiscalYear(ctx context.Context, organizationID string, invoiceType types.InvoiceType, fiscalYear int) ([]*invoice.Invoice, error) {
	return s.InMemoryStore.List(ctx,
		func(_ context.Context, inv *invoice.Invoice) bool {
			return inv.OrganizationID == organizationID &&
				inv.InvoiceType == invoiceType &&
				inv.TargetFiscalYear() == fiscalYear
		},
		nil,
	), nil
}

func (s *InMemoryInvoiceStore) Cancel(ctx context.Context, ids []string) (int, error) {
	now := time.Now().UTC()
	cancelled := 0
	for _, id := range ids {
		err := s.InMemoryStore.Mutate(ctx, id, func(inv *invoice.Invoice) (*invoice.Invoice, error) {
			if !inv.IsPending() {
				return inv, nil
			}
			inv.InvoiceStatus = types.InvoiceStatusCancelled
			inv.CancelledAt = &now
			inv.UpdatedAt = now
			cancelled++
			return inv, nil
		})
		if err != nil {
			return cancelled, err
		}
	}
	return cancelled, nil
}

func (s *InMemoryInvoiceStore) CreateMany(ctx context.Context, invoices []*invoice.Invoice) (int, error) {
	s.mu.Lock()
	hook := s.createManyHook
	s.mu.Unlock()
	if hook != nil {
		if err := hook(invoices); err != nil {
			return 0, err
		}
	}

	// the year index is rebuilt under the store lock so parallel batches stay consistent
	s.InMemoryStore.mu.Lock()
	defer s.InMemoryStore.mu.Unlock()

	taken := make(map[string]struct{}, len(s.items))
	for _, inv := range s.items {
		if inv.FiscalYear > 0 {
			taken[yearKey(inv)] = struct{}{}
		}
	}

	created := 0
	for _, inv := range invoices {
		key := yearKey(inv)
		if _, dup := taken[key]; dup {
			continue
		}
		taken[key] = struct{}{}
		s.items[inv.ID] = inv
		created++
	}
	return created, nil
}

func (s *InMemoryInvoiceStore) MarkCaptured(ctx context.Context, id string, capturedAt time.Time) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.InMemoryStore.Mutate(ctx, id, func(inv *invoice.Invoice) (*invoice.Invoice, error) {
		if !inv.IsPending() {
			return nil, invoice.NewNotPendingError(id)
		}
		inv.InvoiceStatus = types.InvoiceStatusCaptured
		inv.CapturedAt = &capturedAt
		inv.UpdatedAt = capturedAt
		return inv, nil
	})
}

func (s *InMemoryInvoiceStore) Clear() {
	s.InMemoryStore.Clear()
	s.OnCreateMany(nil)
}
