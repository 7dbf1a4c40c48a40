// Package kid builds structured payment references ("KID") with a trailing
// MOD10 (Luhn) check digit, as used to match bank transfers to invoices.
package kid

import (
	"fmt"
	"strings"

	ierr "github.com/flexprice/feeledger/internal/errors"
)

// CheckDigit computes the MOD10 check digit for a string of digits
func CheckDigit(digits string) (int, error) {
	if digits == "" {
		return 0, ierr.NewError("empty reference").
			WithHint("Payment reference cannot be empty").
			Mark(ierr.ErrValidation)
	}

	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, ierr.NewErrorf("non-digit %q in reference", c).
				WithHint("Payment reference must be numeric").
				Mark(ierr.ErrValidation)
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10, nil
}

// Format left-pads number to length-1 digits and appends its check digit.
// It returns the padded reference and the full KID.
func Format(number uint64, length int) (string, string, error) {
	reference := fmt.Sprintf("%0*d", length-1, number)
	if len(reference) > length-1 {
		return "", "", ierr.NewErrorf("reference %d exceeds %d digits", number, length-1).
			WithHint("Payment reference space is exhausted, increase the KID length").
			Mark(ierr.ErrSystem)
	}
	digit, err := CheckDigit(reference)
	if err != nil {
		return "", "", err
	}
	return reference, fmt.Sprintf("%s%d", reference, digit), nil
}

// Valid reports whether kid carries a correct trailing check digit
func Valid(kid string) bool {
	if len(kid) < 2 || strings.TrimLeft(kid, "0123456789") != "" {
		return false
	}
	digit, err := CheckDigit(kid[:len(kid)-1])
	if err != nil {
		return false
	}
	return int(kid[len(kid)-1]-'0') == digit
}
