package plan

import (
	"github.com/shopspring/decimal"
)

// Plan is a platform subscription plan an organization pays for
type Plan struct {
	Name string `json:"name"`
	// AnnualPrice is the platform fee owed per fiscal year
	AnnualPrice decimal.Decimal `json:"annual_price"`
	// FixedFee and PercentFee make up the per-payment transaction fee once the annual price is settled
	FixedFee   decimal.Decimal `json:"fixed_fee"`
	PercentFee decimal.Decimal `json:"percent_fee"`
}

// TransactionFee returns fixedFee + amount * percentFee rounded to cents, never more than amount
func (p *Plan) TransactionFee(amount decimal.Decimal) decimal.Decimal {
	fee := p.FixedFee.Add(amount.Mul(p.PercentFee)).Round(2)
	return decimal.Min(fee, amount)
}
