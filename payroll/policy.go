package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// CALCULATION POLICY - Toggleable allowance components
// =============================================================================

// Historical implementations of this system disagreed on whether
// leadership and special-equipment allowances belong to the dispatch
// formula; some zeroed them out entirely. Rather than commit to one
// variant, both allowances are independent policy switches. The default
// enables both.
type CalcPolicy struct {
	LeadershipAllowance       bool
	SpecialEquipmentAllowance bool
}

func DefaultPolicy() CalcPolicy {
	return CalcPolicy{
		LeadershipAllowance:       true,
		SpecialEquipmentAllowance: true,
	}
}

// =============================================================================
// RATE CONSTANTS
// =============================================================================

var (
	// leadershipRate: a leadership role adds 20% of base pay per incident.
	leadershipRate = decimal.RequireFromString("0.2")

	// riskLevelFactor scales (riskMultiplier - 1) by incident risk level.
	riskLevelFactor = decimal.RequireFromString("0.1")

	// withholdingRate is the fixed income-tax withholding rate applied to
	// gross rewards. Illustrative constant, not a tax-law implementation.
	withholdingRate = decimal.RequireFromString("0.1021")
)

// equipmentHourlyRate: special equipment use pays a flat amount per hour.
var equipmentHourlyRate = Yen(1000)

// serviceYearBonusPerYear: annual stipend default bonus per year served.
var serviceYearBonusPerYear = Yen(2000)
