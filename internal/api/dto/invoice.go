package dto

import (
	"time"

	"github.com/flexprice/feeledger/internal/domain/allocation"
	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceResponse is a membership fee invoice as shown to API clients
type InvoiceResponse struct {
	ID             string              `json:"id"`
	OrganizationID string              `json:"organization_id"`
	MemberID       string              `json:"member_id"`
	Amount         decimal.Decimal     `json:"amount"`
	InvoiceStatus  types.InvoiceStatus `json:"invoice_status"`
	FiscalYear     int                 `json:"fiscal_year"`
	DueDate        time.Time           `json:"due_date"`
	KID            string              `json:"kid"`
	CapturedAt     *time.Time          `json:"captured_at,omitempty"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:             inv.ID,
		OrganizationID: inv.OrganizationID,
		MemberID:       inv.MemberID,
		Amount:         inv.Amount,
		InvoiceStatus:  inv.InvoiceStatus,
		FiscalYear:     inv.TargetFiscalYear(),
		DueDate:        inv.DueDate,
		KID:            inv.KID,
		CapturedAt:     inv.CapturedAt,
	}
}

// CaptureInvoiceResponse is a captured invoice and the split of its payment
type CaptureInvoiceResponse struct {
	Invoice    *InvoiceResponse          `json:"invoice"`
	Allocation *allocation.FeeAllocation `json:"allocation"`
}
