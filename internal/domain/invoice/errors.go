package invoice

import (
	ierr "github.com/flexprice/feeledger/internal/errors"
)

// NewNotFoundError builds the error returned when an invoice does not exist
func NewNotFoundError(id string) error {
	return ierr.NewError("invoice not found").
		WithHintf("Invoice %s was not found", id).
		WithReportableDetails(map[string]any{
			"invoice_id": id,
		}).
		Mark(ierr.ErrNotFound)
}

// NewNotPendingError builds the error returned when an invoice can no longer be captured
func NewNotPendingError(id string) error {
	return ierr.NewError("invoice is not pending").
		WithHintf("Invoice %s is not awaiting payment", id).
		WithReportableDetails(map[string]any{
			"invoice_id": id,
		}).
		Mark(ierr.ErrInvalidOperation)
}
