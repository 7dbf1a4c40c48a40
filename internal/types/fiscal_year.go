package types

import (
	"regexp"
	"strconv"
	"time"
)

// Fiscal years follow the calendar year in UTC.

// FiscalYearOf returns the fiscal year a timestamp belongs to
func FiscalYearOf(t time.Time) int {
	return t.UTC().Year()
}

// CurrentFiscalYear returns the fiscal year of the current wall clock
func CurrentFiscalYear() int {
	return FiscalYearOf(time.Now())
}

// FiscalYearStart returns the first instant of the given fiscal year
func FiscalYearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ParseFiscalYear extracts the last four-digit year mentioned in free text.
// Returns false when the text carries no recognizable year.
func ParseFiscalYear(text string) (int, bool) {
	matches := yearPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return 0, false
	}
	return year, true
}
