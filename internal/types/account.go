package types

import (
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionAccountStatus is the lifecycle status of an organization's platform subscription
type SubscriptionAccountStatus string

const (
	SubscriptionAccountStatusPending SubscriptionAccountStatus = "pending"
	SubscriptionAccountStatusActive  SubscriptionAccountStatus = "active"
	SubscriptionAccountStatusExpired SubscriptionAccountStatus = "expired"
)

func (s SubscriptionAccountStatus) String() string {
	return string(s)
}

func (s SubscriptionAccountStatus) Validate() error {
	allowed := []SubscriptionAccountStatus{
		SubscriptionAccountStatusPending,
		SubscriptionAccountStatusActive,
		SubscriptionAccountStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription account status").
			WithHint("Please provide a valid subscription account status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
