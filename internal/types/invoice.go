package types

import (
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/samber/lo"
)

// InvoiceType is the kind of money owed that an invoice represents
type InvoiceType string

const (
	InvoiceTypeMembershipFee InvoiceType = "membership_fee"
)

func (t InvoiceType) String() string {
	return string(t)
}

// InvoiceStatus is the settlement state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusCaptured  InvoiceStatus = "captured"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusCancelled,
		InvoiceStatusCaptured,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceFilter narrows invoice lookups for an organization
type InvoiceFilter struct {
	OrganizationID string
	InvoiceType    InvoiceType
	InvoiceStatus  *InvoiceStatus
	FiscalYear     *int
}
