/*
Package factory provides JSON to Go reference-table conversion.

PURPOSE:
  Converts JSON rate definitions into payroll.ReferenceTables. This
  enables rate configuration without code changes - each municipality
  sets its own ordinance rates in JSON, and the factory builds the
  proper Go structs.

WHY JSON?
  - Non-developers can adjust ordinance rates
  - Easy integration with an admin UI
  - Version control for rate schedules

JSON SCHEMA:
  {
    "ranks": [
      {"key": "captain", "name": "団長", "pay_multiplier": 2.0, "annual_base": 120000}
    ],
    "incident_types": [
      {"key": "fire", "name": "火災出動", "base_rate": 3000, "risk_multiplier": 1.5}
    ]
  }

VALIDATION:
  - Multipliers must be >= 1.0
  - Base rates and annual bases must be positive
  - Keys and pay multipliers must be unique

USAGE:
  factory := NewReferenceFactory()
  tables, err := factory.ParseTables(jsonString)

SEE ALSO:
  - payroll/reference.go: Table type definitions and defaults
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/stipend-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TablesJSON is the JSON representation of the reference tables.
type TablesJSON struct {
	Ranks         []RankJSON         `json:"ranks"`
	IncidentTypes []IncidentTypeJSON `json:"incident_types"`
}

// RankJSON represents one rank tier.
type RankJSON struct {
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	PayMultiplier float64 `json:"pay_multiplier"`
	AnnualBase    int64   `json:"annual_base"`
}

// IncidentTypeJSON represents one incident category.
type IncidentTypeJSON struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	BaseRate       int64   `json:"base_rate"`
	RiskMultiplier float64 `json:"risk_multiplier"`
}

// =============================================================================
// REFERENCE FACTORY
// =============================================================================

// ReferenceFactory converts JSON rate schedules to Go structs.
type ReferenceFactory struct{}

// NewReferenceFactory creates a new reference factory.
func NewReferenceFactory() *ReferenceFactory {
	return &ReferenceFactory{}
}

// ParseTables parses a JSON string into ReferenceTables.
func (f *ReferenceFactory) ParseTables(jsonStr string) (payroll.ReferenceTables, error) {
	var tj TablesJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return payroll.ReferenceTables{}, fmt.Errorf("failed to parse reference JSON: %w", err)
	}
	return f.FromJSON(tj)
}

// FromJSON converts TablesJSON to payroll.ReferenceTables.
func (f *ReferenceFactory) FromJSON(tj TablesJSON) (payroll.ReferenceTables, error) {
	tables := payroll.ReferenceTables{
		Ranks:         make(map[payroll.RankKey]payroll.RankInfo, len(tj.Ranks)),
		IncidentTypes: make(map[payroll.IncidentTypeKey]payroll.IncidentTypeInfo, len(tj.IncidentTypes)),
	}

	seenMultipliers := make(map[string]string)
	for _, rj := range tj.Ranks {
		if rj.Key == "" {
			return payroll.ReferenceTables{}, fmt.Errorf("rank with empty key")
		}
		if rj.PayMultiplier < 1.0 {
			return payroll.ReferenceTables{}, fmt.Errorf("rank %s: pay multiplier %v below 1.0", rj.Key, rj.PayMultiplier)
		}
		if rj.AnnualBase <= 0 {
			return payroll.ReferenceTables{}, fmt.Errorf("rank %s: annual base must be positive", rj.Key)
		}
		key := payroll.RankKey(rj.Key)
		if _, dup := tables.Ranks[key]; dup {
			return payroll.ReferenceTables{}, fmt.Errorf("duplicate rank key %s", rj.Key)
		}
		mult := decimal.NewFromFloat(rj.PayMultiplier)
		if prev, dup := seenMultipliers[mult.String()]; dup {
			return payroll.ReferenceTables{}, fmt.Errorf("ranks %s and %s share pay multiplier %v", prev, rj.Key, rj.PayMultiplier)
		}
		seenMultipliers[mult.String()] = rj.Key

		tables.Ranks[key] = payroll.RankInfo{
			Key:           key,
			Name:          rj.Name,
			PayMultiplier: mult,
			AnnualBase:    payroll.Yen(rj.AnnualBase),
		}
	}

	for _, ij := range tj.IncidentTypes {
		if ij.Key == "" {
			return payroll.ReferenceTables{}, fmt.Errorf("incident type with empty key")
		}
		if ij.RiskMultiplier < 1.0 {
			return payroll.ReferenceTables{}, fmt.Errorf("incident type %s: risk multiplier %v below 1.0", ij.Key, ij.RiskMultiplier)
		}
		if ij.BaseRate <= 0 {
			return payroll.ReferenceTables{}, fmt.Errorf("incident type %s: base rate must be positive", ij.Key)
		}
		key := payroll.IncidentTypeKey(ij.Key)
		if _, dup := tables.IncidentTypes[key]; dup {
			return payroll.ReferenceTables{}, fmt.Errorf("duplicate incident type key %s", ij.Key)
		}

		tables.IncidentTypes[key] = payroll.IncidentTypeInfo{
			Key:            key,
			Name:           ij.Name,
			BaseRate:       payroll.Yen(ij.BaseRate),
			RiskMultiplier: decimal.NewFromFloat(ij.RiskMultiplier),
		}
	}

	return tables, nil
}

// ToJSON converts ReferenceTables back to their JSON representation.
// Ranks follow seniority order where known; custom keys trail behind.
func (f *ReferenceFactory) ToJSON(tables payroll.ReferenceTables) TablesJSON {
	var tj TablesJSON

	emit := func(r payroll.RankInfo) {
		mult, _ := r.PayMultiplier.Float64()
		tj.Ranks = append(tj.Ranks, RankJSON{
			Key:           string(r.Key),
			Name:          r.Name,
			PayMultiplier: mult,
			AnnualBase:    r.AnnualBase.Int64(),
		})
	}

	emitted := make(map[payroll.RankKey]bool)
	for _, key := range payroll.RankOrder {
		if r, ok := tables.Ranks[key]; ok {
			emit(r)
			emitted[key] = true
		}
	}
	for key, r := range tables.Ranks {
		if !emitted[key] {
			emit(r)
		}
	}

	for _, it := range tables.IncidentTypes {
		mult, _ := it.RiskMultiplier.Float64()
		tj.IncidentTypes = append(tj.IncidentTypes, IncidentTypeJSON{
			Key:            string(it.Key),
			Name:           it.Name,
			BaseRate:       it.BaseRate.Int64(),
			RiskMultiplier: mult,
		})
	}

	return tj
}
