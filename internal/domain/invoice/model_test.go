package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewMembershipFeeInvoice(t *testing.T) {
	due := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	inv := NewMembershipFeeInvoice(context.Background(), "org_1", "mem_1", decimal.NewFromInt(500), 2025, due, "123456789", "1234567897")

	assert.Equal(t, types.InvoiceTypeMembershipFee, inv.InvoiceType)
	assert.Equal(t, types.InvoiceStatusPending, inv.InvoiceStatus)
	assert.Equal(t, 2025, inv.FiscalYear)
	assert.Equal(t, "2025", inv.Metadata[MetadataKeyFiscalYear])
	assert.Equal(t, "1234567897", inv.KID)
	assert.True(t, inv.IsPending())
}

func TestTargetFiscalYear(t *testing.T) {
	created := time.Date(2022, time.March, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		inv  Invoice
		want int
	}{
		{
			name: "typed column wins",
			inv: Invoice{
				FiscalYear:  2024,
				Metadata:    types.Metadata{MetadataKeyFiscalYear: "2023"},
				Description: "Membership fee 2021",
				BaseModel:   types.BaseModel{CreatedAt: created},
			},
			want: 2024,
		},
		{
			name: "metadata before description",
			inv: Invoice{
				Metadata:    types.Metadata{MetadataKeyFiscalYear: "2023"},
				Description: "Membership fee 2021",
				BaseModel:   types.BaseModel{CreatedAt: created},
			},
			want: 2023,
		},
		{
			name: "description when metadata is unusable",
			inv: Invoice{
				Metadata:    types.Metadata{MetadataKeyFiscalYear: "next"},
				Description: "Medlemskontingent 2021",
				BaseModel:   types.BaseModel{CreatedAt: created},
			},
			want: 2021,
		},
		{
			name: "created year as last resort",
			inv: Invoice{
				Description: "Kontingent",
				BaseModel:   types.BaseModel{CreatedAt: created},
			},
			want: 2022,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.inv.TargetFiscalYear())
		})
	}
}
