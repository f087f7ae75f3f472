/*
Package payroll provides the stipend calculation engine for a volunteer
fire brigade.

PURPOSE:
  This package contains the core types and pure calculation functions that
  turn (member, incident, participation record) tuples into a monetary
  breakdown. It covers two stipend kinds:
  - Dispatch stipends: paid per incident participation (hours x rates)
  - Annual stipends: flat yearly payment based on rank and tenure

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A whole-yen monetary amount (decimal-backed, no float drift)
  - Member/Incident: The payees and the events they responded to
  - ActivityRecord: Hours and flags for one (member, incident) pair
  - AnnualPaymentRecord: Per-year overrides for the annual stipend
  - PayrollCalculation: The engine's per-member output

DESIGN PRINCIPLES:
  1. Purity: Calculations are functions of their inputs and the static
     reference tables. Same snapshot in, same breakdown out.
  2. Precision: Uses decimal.Decimal so accumulation never loses yen.
  3. Tolerance: A selection referencing an unknown member or incident
     contributes nothing. Missing data is never fatal.

USAGE:
  engine := payroll.NewEngine(payroll.DefaultTables(), payroll.DefaultPolicy())
  session := payroll.NewSession(payroll.TypeDispatch, 2024, members, incidents)
  session.SelectIncident("inc001")
  session.SetParticipationHours("mem001", "inc001", 4)
  calcs := engine.Recompute(session)

SEE ALSO:
  - reference.go: Rank and incident-type reference tables
  - dispatch.go / annual.go: The two calculation paths
  - session.go: Selection and record state for one open batch
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Whole-yen monetary amount
// =============================================================================

// Money is a monetary amount in yen. There is no minor currency unit:
// every stored amount is a whole number of yen, though intermediate
// calculation results may carry fractions until rounded by the caller.
type Money struct {
	Value decimal.Decimal
}

func Yen(v int64) Money { return Money{Value: decimal.NewFromInt(v)} }

func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Floor() Money                { return Money{Value: m.Value.Floor()} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool          { return m.Value.Equal(o.Value) }

// Int64 truncates toward zero. Stored amounts are whole yen already,
// so for them this is exact.
func (m Money) Int64() int64 { return m.Value.IntPart() }

// Float64 is for DTO serialization only. Engine math stays decimal.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// ClampNonNegative zeroes out negative amounts. Malformed manual input
// must never produce a negative line item.
func (m Money) ClampNonNegative() Money {
	if m.IsNegative() {
		return Money{Value: decimal.Zero}
	}
	return m
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type MemberID string
type IncidentID string
type RankKey string
type IncidentTypeKey string

// PaymentType distinguishes the two stipend kinds a batch can pay out.
type PaymentType string

const (
	TypeDispatch PaymentType = "dispatch"
	TypeAnnual   PaymentType = "annual"
)

// =============================================================================
// DOMAIN ENTITIES
// =============================================================================

// Member is a brigade member. Read-only in this engine: members are
// seeded by the surrounding system, never created here.
type Member struct {
	ID             MemberID
	Name           string
	Rank           RankKey
	YearsOfService int
	JoinDate       time.Time
}

// Incident is a brigade response event. Participants is the
// authoritative list of members eligible for this incident.
type Incident struct {
	ID           IncidentID
	Name         string
	Type         IncidentTypeKey
	Date         time.Time
	Duration     float64 // hours
	RiskLevel    int     // >= 1
	Description  string
	Participants []MemberID
}

// ActivityRecord captures one member's participation in one incident.
// Records live only for the duration of a calculation session; a record
// with zero participation hours means "did not participate" and is
// excluded from all totals. OtherDeductions feeds the per-record
// withholding breakdown; the tax itself is always re-derived from the
// record's pay, never stored.
type ActivityRecord struct {
	MemberID             MemberID
	IncidentID           IncidentID
	ParticipationHours   float64
	LeadershipRole       bool
	SpecialEquipmentUsed bool
	OtherDeductions      Money
	Notes                string
}

// AnnualPaymentRecord holds manual overrides for one member's annual
// stipend in one year. Nil components fall back to rank/tenure defaults.
type AnnualPaymentRecord struct {
	MemberID         MemberID
	Year             int
	BaseAmount       *Money
	ServiceYearBonus *Money
	SpecialAllowance *Money
	Notes            string
}

// =============================================================================
// CALCULATION OUTPUT
// =============================================================================

// IncidentLine is one incident's contribution to a member's dispatch
// stipend, with the withholding breakdown derived from that line's pay
// and the record's deductions. Re-derived on every recompute.
type IncidentLine struct {
	IncidentID   IncidentID
	IncidentName string
	Hours        float64
	Pay          Money
	Withholding  WithholdingStatement
}

// DispatchDetails itemizes a dispatch stipend.
type DispatchDetails struct {
	TotalHours          float64
	BaseAllowance       Money
	RiskAllowance       Money
	LeadershipAllowance Money
	EquipmentAllowance  Money
	Incidents           []IncidentLine
}

// AnnualDetails itemizes an annual stipend.
type AnnualDetails struct {
	Year             int
	BaseAmount       Money
	ServiceYearBonus Money
	SpecialAllowance Money
	YearsOfService   int
	Notes            string
}

// PayrollCalculation is the engine's output for one member in the
// currently open batch. Exactly one of Dispatch/Annual is set,
// matching the session's payment type.
type PayrollCalculation struct {
	MemberID    MemberID
	MemberName  string
	Rank        string // display name, not key
	TotalAmount Money
	Dispatch    *DispatchDetails
	Annual      *AnnualDetails
}

// WithholdingStatement breaks a gross reward into the amount actually
// transferred. Transfer may go negative when deductions exceed the
// reward; that is accepted behavior, not an error.
type WithholdingStatement struct {
	Reward          Money
	WithholdingTax  Money
	OtherDeductions Money
	Transfer        Money
}
