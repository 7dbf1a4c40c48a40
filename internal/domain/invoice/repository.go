package invoice

import (
	"context"
	"time"

	"github.com/flexprice/feeledger/internal/types"
)

// Repository defines the interface for the invoice ledger
type Repository interface {
	Get(ctx context.Context, id string) (*Invoice, error)
	// FindPending returns pending invoices of the given type created before fiscalYear
	// started and raised for an earlier fiscal year
	FindPending(ctx context.Context, organizationID string, invoiceType types.InvoiceType, fiscalYear int) ([]*Invoice, error)
	// FindByFiscalYear returns invoices of any status raised for the given fiscal year,
	// including legacy rows whose year is only known from metadata or description
	FindByFiscalYear(ctx context.Context, organizationID string, invoiceType types.InvoiceType, fiscalYear int) ([]*Invoice, error)
	// Cancel moves the given invoices from pending to cancelled and returns how many changed
	Cancel(ctx context.Context, ids []string) (int, error)
	// CreateMany inserts invoices, silently skipping any that collide on
	// (organization, member, type, fiscal year), and returns how many were inserted
	CreateMany(ctx context.Context, invoices []*Invoice) (int, error)
	// MarkCaptured moves a pending invoice to captured
	MarkCaptured(ctx context.Context, id string, capturedAt time.Time) error
}

// ReferenceGenerator issues collision-free payment references.
// It returns the numeric reference and the same reference with its check digit.
type ReferenceGenerator interface {
	Generate(ctx context.Context) (reference string, kid string, err error)
}
