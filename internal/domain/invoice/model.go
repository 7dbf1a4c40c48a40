package invoice

import (
	"context"
	"strconv"
	"time"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
)

// MetadataKeyFiscalYear is the metadata key legacy rows used to tag their target year
const MetadataKeyFiscalYear = "fiscal_year"

// Invoice is a membership fee owed by a member to an organization
type Invoice struct {
	ID             string              `db:"id" json:"id"`
	OrganizationID string              `db:"organization_id" json:"organization_id"`
	MemberID       string              `db:"member_id" json:"member_id"`
	Amount         decimal.Decimal     `db:"amount" json:"amount"`
	InvoiceType    types.InvoiceType   `db:"invoice_type" json:"invoice_type"`
	InvoiceStatus  types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	DueDate        time.Time           `db:"due_date" json:"due_date"`
	// Reference is the numeric payment reference without its check digit
	Reference string `db:"reference" json:"reference"`
	// KID is the reference with its check digit, quoted by payers on bank transfers
	KID         string `db:"kid" json:"kid"`
	Description string `db:"description" json:"description,omitempty"`
	// FiscalYear is the year the invoice bills for. Zero on rows created before the column existed.
	FiscalYear  int            `db:"fiscal_year" json:"fiscal_year"`
	Metadata    types.Metadata `db:"metadata" json:"metadata,omitempty"`
	CapturedAt  *time.Time     `db:"captured_at" json:"captured_at,omitempty"`
	CancelledAt *time.Time     `db:"cancelled_at" json:"cancelled_at,omitempty"`
	types.BaseModel
}

// NewMembershipFeeInvoice drafts a pending membership fee invoice for one member and fiscal year
func NewMembershipFeeInvoice(
	ctx context.Context,
	organizationID, memberID string,
	amount decimal.Decimal,
	fiscalYear int,
	dueDate time.Time,
	reference, kid string,
) *Invoice {
	return &Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		OrganizationID: organizationID,
		MemberID:       memberID,
		Amount:         amount,
		InvoiceType:    types.InvoiceTypeMembershipFee,
		InvoiceStatus:  types.InvoiceStatusPending,
		DueDate:        dueDate,
		Reference:      reference,
		KID:            kid,
		Description:    "Membership fee " + strconv.Itoa(fiscalYear),
		FiscalYear:     fiscalYear,
		Metadata: types.Metadata{
			MetadataKeyFiscalYear: strconv.Itoa(fiscalYear),
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

// TargetFiscalYear infers the fiscal year the invoice was raised for.
// The typed column wins; legacy rows fall back to metadata, then the
// description text, then the year the row was created.
func (i *Invoice) TargetFiscalYear() int {
	if i.FiscalYear > 0 {
		return i.FiscalYear
	}
	if raw, ok := i.Metadata[MetadataKeyFiscalYear]; ok {
		if year, err := strconv.Atoi(raw); err == nil && year > 0 {
			return year
		}
	}
	if year, ok := types.ParseFiscalYear(i.Description); ok {
		return year
	}
	return types.FiscalYearOf(i.CreatedAt)
}

// IsPending reports whether the invoice is still awaiting payment
func (i *Invoice) IsPending() bool {
	return i.InvoiceStatus == types.InvoiceStatusPending
}
