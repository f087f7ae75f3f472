/*
reference.go - Static rank and incident-type reference tables

PURPOSE:
  Holds the immutable reference data the engine multiplies against:
  rank pay multipliers, annual base amounts, and incident-type rates.
  Tables are supplied as configuration (see factory/ for JSON loading);
  the defaults here match the brigade's standard ordinance values.

RANK TIERS (seniority order, multiplier / annual base):
  captain     2.0 / 120,000   brigade captain
  deputy      1.8 / 100,000   deputy captain
  chief       1.6 /  80,000   company chief
  lieutenant  1.4 /  60,000   deputy company chief
  sergeant    1.2 /  50,000   squad leader
  member      1.0 /  40,000   firefighter

INCIDENT TYPES (base rate / risk multiplier):
  fire       3000 / 1.5    rescue   2500 / 1.3    emergency 2000 / 1.0
  training   1500 / 1.0    patrol   1000 / 1.0    meeting    800 / 1.0

  Only elevated-risk categories (fire, rescue) carry a risk multiplier
  above 1.0. For the rest, the risk allowance vanishes by construction.

SEE ALSO:
  - factory/reference.go: JSON configuration of these tables
  - dispatch.go: How the multipliers combine
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// REFERENCE TYPES
// =============================================================================

// RankInfo is one rank tier. Immutable at runtime.
type RankInfo struct {
	Key           RankKey
	Name          string
	PayMultiplier decimal.Decimal // >= 1.0, unique per tier
	AnnualBase    Money
}

// IncidentTypeInfo is one incident category. Immutable at runtime.
type IncidentTypeInfo struct {
	Key            IncidentTypeKey
	Name           string
	BaseRate       Money           // yen per hour before multipliers
	RiskMultiplier decimal.Decimal // >= 1.0
}

// ReferenceTables bundles the static configuration the engine computes
// against. Lookups that miss return ok=false; the engine treats a miss
// as "no contribution", never an error.
type ReferenceTables struct {
	Ranks         map[RankKey]RankInfo
	IncidentTypes map[IncidentTypeKey]IncidentTypeInfo
}

func (t ReferenceTables) Rank(key RankKey) (RankInfo, bool) {
	r, ok := t.Ranks[key]
	return r, ok
}

func (t ReferenceTables) IncidentType(key IncidentTypeKey) (IncidentTypeInfo, bool) {
	it, ok := t.IncidentTypes[key]
	return it, ok
}

// =============================================================================
// DEFAULT TABLES
// =============================================================================

// Rank keys, most senior first.
const (
	RankCaptain    RankKey = "captain"
	RankDeputy     RankKey = "deputy"
	RankChief      RankKey = "chief"
	RankLieutenant RankKey = "lieutenant"
	RankSergeant   RankKey = "sergeant"
	RankMember     RankKey = "member"
)

// RankOrder lists rank keys by seniority for stable display.
var RankOrder = []RankKey{
	RankCaptain, RankDeputy, RankChief, RankLieutenant, RankSergeant, RankMember,
}

const (
	IncidentFire      IncidentTypeKey = "fire"
	IncidentRescue    IncidentTypeKey = "rescue"
	IncidentEmergency IncidentTypeKey = "emergency"
	IncidentTraining  IncidentTypeKey = "training"
	IncidentPatrol    IncidentTypeKey = "patrol"
	IncidentMeeting   IncidentTypeKey = "meeting"
)

// DefaultTables returns the standard ordinance rates.
func DefaultTables() ReferenceTables {
	return ReferenceTables{
		Ranks: map[RankKey]RankInfo{
			RankCaptain:    rank(RankCaptain, "団長", "2.0", 120000),
			RankDeputy:     rank(RankDeputy, "副団長", "1.8", 100000),
			RankChief:      rank(RankChief, "分団長", "1.6", 80000),
			RankLieutenant: rank(RankLieutenant, "副分団長", "1.4", 60000),
			RankSergeant:   rank(RankSergeant, "部長", "1.2", 50000),
			RankMember:     rank(RankMember, "団員", "1.0", 40000),
		},
		IncidentTypes: map[IncidentTypeKey]IncidentTypeInfo{
			IncidentFire:      incidentType(IncidentFire, "火災出動", 3000, "1.5"),
			IncidentRescue:    incidentType(IncidentRescue, "救助出動", 2500, "1.3"),
			IncidentEmergency: incidentType(IncidentEmergency, "救急支援", 2000, "1.0"),
			IncidentTraining:  incidentType(IncidentTraining, "訓練", 1500, "1.0"),
			IncidentPatrol:    incidentType(IncidentPatrol, "警戒巡視", 1000, "1.0"),
			IncidentMeeting:   incidentType(IncidentMeeting, "会議・点検", 800, "1.0"),
		},
	}
}

func rank(key RankKey, name, multiplier string, annualBase int64) RankInfo {
	return RankInfo{
		Key:           key,
		Name:          name,
		PayMultiplier: decimal.RequireFromString(multiplier),
		AnnualBase:    Yen(annualBase),
	}
}

func incidentType(key IncidentTypeKey, name string, baseRate int64, riskMultiplier string) IncidentTypeInfo {
	return IncidentTypeInfo{
		Key:            key,
		Name:           name,
		BaseRate:       Yen(baseRate),
		RiskMultiplier: decimal.RequireFromString(riskMultiplier),
	}
}
