package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFiscalYearOf(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	tests := []struct {
		name string
		in   time.Time
		want int
	}{
		{"mid year", time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC), 2025},
		{"first instant", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), 2025},
		{"last instant", time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC), 2024},
		{"offset zone before utc new year", time.Date(2025, time.January, 1, 1, 0, 0, 0, loc), 2024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FiscalYearOf(tt.in))
		})
	}
}

func TestFiscalYearStart(t *testing.T) {
	start := FiscalYearStart(2025)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 2024, FiscalYearOf(start.Add(-time.Nanosecond)))
}

func TestParseFiscalYear(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{"norwegian description", "Medlemskontingent 2024", 2024, true},
		{"english description", "Membership fee for 2023", 2023, true},
		{"two years picks last", "Membership 2023/2024", 2024, true},
		{"no year", "Membership fee", 0, false},
		{"amount is not a year", "Fee 150000", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFiscalYear(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
