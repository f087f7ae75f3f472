package payroll

// =============================================================================
// WITHHOLDING - Gross reward to transfer amount
// =============================================================================

// Withholding breaks a gross reward into tax, deductions, and the amount
// transferred:
//
//	withholdingTax = floor(reward * 0.1021)
//	transfer       = reward - withholdingTax - otherDeductions
//
// Floor, not round: fractional yen are never issued. Negative inputs are
// clamped to zero, but the transfer itself may legitimately go negative
// when deductions exceed the reward.
func Withholding(reward, otherDeductions Money) WithholdingStatement {
	reward = reward.ClampNonNegative()
	otherDeductions = otherDeductions.ClampNonNegative()

	tax := reward.Mul(withholdingRate).Floor()
	return WithholdingStatement{
		Reward:          reward,
		WithholdingTax:  tax,
		OtherDeductions: otherDeductions,
		Transfer:        reward.Sub(tax).Sub(otherDeductions),
	}
}
