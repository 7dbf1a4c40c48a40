package types

// AllocationPhase tells which part of the fee model a payment was charged under
type AllocationPhase string

const (
	// AllocationPhaseCoveringAnnualFee means the payment went entirely towards the annual platform fee
	AllocationPhaseCoveringAnnualFee AllocationPhase = "covering_annual_fee"
	// AllocationPhaseAnnualFeeComplete means the payment settled the remaining annual platform fee
	AllocationPhaseAnnualFeeComplete AllocationPhase = "annual_fee_complete"
	// AllocationPhaseStandardTransaction means the annual fee was already settled and a transaction fee applied
	AllocationPhaseStandardTransaction AllocationPhase = "standard_transaction"
)

func (p AllocationPhase) String() string {
	return string(p)
}
