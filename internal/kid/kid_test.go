package kid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	tests := []struct {
		digits string
		want   int
	}{
		{"7992739871", 3},
		{"1234567", 4},
		{"000000001", 8},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			got, err := CheckDigit(tt.digits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckDigitRejectsNonDigits(t *testing.T) {
	_, err := CheckDigit("12a4")
	assert.Error(t, err)

	_, err = CheckDigit("")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	reference, full, err := Format(1, 10)
	require.NoError(t, err)
	assert.Equal(t, "000000001", reference)
	assert.Equal(t, "0000000018", full)
	assert.True(t, Valid(full))
}

func TestFormatOverflow(t *testing.T) {
	_, _, err := Format(123456, 5)
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("79927398713"))
	assert.False(t, Valid("79927398710"))
	assert.False(t, Valid("7"))
	assert.False(t, Valid("12x4"))
}
