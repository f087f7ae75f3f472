package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stipend-engine/factory"
	"github.com/warp/stipend-engine/payroll"
)

const minimalJSON = `{
	"ranks": [
		{"key": "captain", "name": "団長", "pay_multiplier": 2.0, "annual_base": 120000},
		{"key": "member", "name": "団員", "pay_multiplier": 1.0, "annual_base": 40000}
	],
	"incident_types": [
		{"key": "fire", "name": "火災出動", "base_rate": 3000, "risk_multiplier": 1.5}
	]
}`

func TestParseTables_Valid(t *testing.T) {
	tables, err := factory.NewReferenceFactory().ParseTables(minimalJSON)
	require.NoError(t, err)

	captain, ok := tables.Rank("captain")
	require.True(t, ok)
	assert.Equal(t, "団長", captain.Name)
	assert.True(t, captain.AnnualBase.Equal(payroll.Yen(120000)))

	fire, ok := tables.IncidentType("fire")
	require.True(t, ok)
	assert.True(t, fire.BaseRate.Equal(payroll.Yen(3000)))
}

func TestParseTables_RejectsMalformedJSON(t *testing.T) {
	_, err := factory.NewReferenceFactory().ParseTables(`{"ranks": [`)
	assert.Error(t, err)
}

func TestParseTables_Validation(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{
			"multiplier below one",
			`{"ranks": [{"key": "x", "name": "x", "pay_multiplier": 0.5, "annual_base": 1000}]}`,
		},
		{
			"non-positive annual base",
			`{"ranks": [{"key": "x", "name": "x", "pay_multiplier": 1.5, "annual_base": 0}]}`,
		},
		{
			"empty rank key",
			`{"ranks": [{"key": "", "name": "x", "pay_multiplier": 1.5, "annual_base": 1000}]}`,
		},
		{
			"duplicate rank key",
			`{"ranks": [
				{"key": "x", "name": "a", "pay_multiplier": 1.5, "annual_base": 1000},
				{"key": "x", "name": "b", "pay_multiplier": 1.6, "annual_base": 2000}
			]}`,
		},
		{
			"duplicate pay multiplier",
			`{"ranks": [
				{"key": "a", "name": "a", "pay_multiplier": 1.5, "annual_base": 1000},
				{"key": "b", "name": "b", "pay_multiplier": 1.5, "annual_base": 2000}
			]}`,
		},
		{
			"risk multiplier below one",
			`{"incident_types": [{"key": "x", "name": "x", "base_rate": 1000, "risk_multiplier": 0.9}]}`,
		},
		{
			"non-positive base rate",
			`{"incident_types": [{"key": "x", "name": "x", "base_rate": 0, "risk_multiplier": 1.0}]}`,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := factory.NewReferenceFactory().ParseTables(c.json)
			assert.Error(t, err)
		})
	}
}

func TestToJSON_RanksInSeniorityOrder(t *testing.T) {
	f := factory.NewReferenceFactory()
	tj := f.ToJSON(payroll.DefaultTables())

	require.Len(t, tj.Ranks, len(payroll.RankOrder))
	for i, key := range payroll.RankOrder {
		assert.Equal(t, string(key), tj.Ranks[i].Key, "position %d", i)
	}
}

func TestDefaultTables_RoundTrip(t *testing.T) {
	// Defaults -> JSON -> tables must preserve every rate.
	f := factory.NewReferenceFactory()
	original := payroll.DefaultTables()

	rebuilt, err := f.FromJSON(f.ToJSON(original))
	require.NoError(t, err)

	for key, want := range original.Ranks {
		got, ok := rebuilt.Rank(key)
		require.True(t, ok, "rank %s missing", key)
		assert.True(t, got.PayMultiplier.Equal(want.PayMultiplier), "rank %s multiplier", key)
		assert.True(t, got.AnnualBase.Equal(want.AnnualBase), "rank %s annual base", key)
	}
	for key, want := range original.IncidentTypes {
		got, ok := rebuilt.IncidentType(key)
		require.True(t, ok, "incident type %s missing", key)
		assert.True(t, got.BaseRate.Equal(want.BaseRate), "type %s base rate", key)
		assert.True(t, got.RiskMultiplier.Equal(want.RiskMultiplier), "type %s risk multiplier", key)
	}
}
