package payroll

import "github.com/Rhymond/go-money"

// =============================================================================
// CURRENCY FORMATTING - Display concern, not part of the core contract
// =============================================================================

// FormatYen renders a whole-yen amount as a localized currency string,
// e.g. "¥29,920". Callers must pass whole-yen amounts; fractions are
// truncated.
func FormatYen(m Money) string {
	return money.New(m.Int64(), money.JPY).Display()
}
