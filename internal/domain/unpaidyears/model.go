package unpaidyears

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// UnpaidYears lists the fiscal years a member's invoice was cancelled without being paid.
// Entries are only ever added by renewal; settlement happens elsewhere.
type UnpaidYears struct {
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	MemberID       string    `db:"member_id" json:"member_id"`
	Years          []int     `db:"years" json:"years"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Merge returns the sorted union of existing and added years without duplicates
func Merge(existing []int, added ...int) []int {
	merged := lo.Uniq(append(append([]int{}, existing...), added...))
	sort.Ints(merged)
	return merged
}

// Contains reports whether the given year is recorded as unpaid
func (u *UnpaidYears) Contains(year int) bool {
	return lo.Contains(u.Years, year)
}
