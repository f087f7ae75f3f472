package payroll_test

import (
	"testing"
	"time"

	"github.com/warp/stipend-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testMembers() []payroll.Member {
	return []payroll.Member{
		{ID: "m-captain", Name: "団長", Rank: payroll.RankCaptain, YearsOfService: 15},
		{ID: "m-chief", Name: "分団長", Rank: payroll.RankChief, YearsOfService: 8},
		{ID: "m-member", Name: "団員", Rank: payroll.RankMember, YearsOfService: 3},
	}
}

func testIncidents() []payroll.Incident {
	return []payroll.Incident{
		{
			ID: "i-fire", Name: "住宅火災", Type: payroll.IncidentFire,
			Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			Duration: 6, RiskLevel: 3,
			Participants: []payroll.MemberID{"m-chief"},
		},
		{
			ID: "i-training", Name: "定期訓練", Type: payroll.IncidentTraining,
			Date: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
			Duration: 3, RiskLevel: 1,
			Participants: []payroll.MemberID{"m-chief", "m-member"},
		},
	}
}

func newDispatchSession() *payroll.Session {
	return payroll.NewSession(payroll.TypeDispatch, 2024, testMembers(), testIncidents())
}

func defaultEngine() *payroll.Engine {
	return payroll.NewEngine(payroll.DefaultTables(), payroll.DefaultPolicy())
}

func yen(v int64) payroll.Money { return payroll.Yen(v) }

func assertYen(t *testing.T, label string, got payroll.Money, want int64) {
	t.Helper()
	if !got.Equal(yen(want)) {
		t.Errorf("%s: expected %d yen, got %v", label, want, got.Value)
	}
}

// =============================================================================
// DISPATCH STIPEND TESTS
// =============================================================================

func TestDispatch_FullBreakdown(t *testing.T) {
	// GIVEN: A company chief (multiplier 1.6) on a fire call
	//        (rate 3000, risk multiplier 1.5, risk level 3) for 4 hours,
	//        with leadership role and special equipment
	// WHEN: Recomputing
	// THEN: base 19200, risk 2880, leadership 3840, equipment 4000 = 29920

	s := newDispatchSession()
	s.SelectIncident("i-fire")
	s.SetParticipationHours("m-chief", "i-fire", 4)
	s.SetLeadershipRole("m-chief", "i-fire", true)
	s.SetSpecialEquipmentUsed("m-chief", "i-fire", true)

	calcs := defaultEngine().Recompute(s)
	if len(calcs) != 1 {
		t.Fatalf("expected 1 calculation, got %d", len(calcs))
	}

	c := calcs[0]
	d := c.Dispatch
	if d == nil {
		t.Fatal("expected dispatch details")
	}
	assertYen(t, "base allowance", d.BaseAllowance, 19200)
	assertYen(t, "risk allowance", d.RiskAllowance, 2880)
	assertYen(t, "leadership allowance", d.LeadershipAllowance, 3840)
	assertYen(t, "equipment allowance", d.EquipmentAllowance, 4000)
	assertYen(t, "total", c.TotalAmount, 29920)

	if d.TotalHours != 4 {
		t.Errorf("expected 4 total hours, got %v", d.TotalHours)
	}
	if len(d.Incidents) != 1 {
		t.Fatalf("expected 1 incident line, got %d", len(d.Incidents))
	}
	assertYen(t, "incident line pay", d.Incidents[0].Pay, 29920)
}

func TestDispatch_TotalIsExactSumOfComponents(t *testing.T) {
	// GIVEN: A breakdown with every component non-zero
	// WHEN: Recomputing
	// THEN: total = base + risk + leadership + equipment, exactly

	s := newDispatchSession()
	s.SelectIncident("i-fire")
	s.SetParticipationHours("m-chief", "i-fire", 3.5)
	s.SetLeadershipRole("m-chief", "i-fire", true)
	s.SetSpecialEquipmentUsed("m-chief", "i-fire", true)

	c := defaultEngine().Recompute(s)[0]
	d := c.Dispatch
	sum := d.BaseAllowance.
		Add(d.RiskAllowance).
		Add(d.LeadershipAllowance).
		Add(d.EquipmentAllowance)
	if !c.TotalAmount.Equal(sum) {
		t.Errorf("total %v != component sum %v", c.TotalAmount.Value, sum.Value)
	}
}

func TestDispatch_ZeroHoursContributeNothing(t *testing.T) {
	// GIVEN: A selected member whose only record carries zero hours
	// WHEN: Recomputing
	// THEN: The member still appears, with a zero total and no lines

	s := newDispatchSession()
	s.SelectIncident("i-fire")
	s.SetParticipationHours("m-chief", "i-fire", 0)
	s.SetLeadershipRole("m-chief", "i-fire", true)

	calcs := defaultEngine().Recompute(s)
	if len(calcs) != 1 {
		t.Fatalf("expected 1 calculation, got %d", len(calcs))
	}
	assertYen(t, "total", calcs[0].TotalAmount, 0)
	if len(calcs[0].Dispatch.Incidents) != 0 {
		t.Errorf("expected no incident lines, got %d", len(calcs[0].Dispatch.Incidents))
	}
}

func TestDispatch_RiskVanishesAtUnitMultiplier(t *testing.T) {
	// GIVEN: A training session (risk multiplier exactly 1.0) with a high
	//        risk level on the incident
	// WHEN: Recomputing
	// THEN: The risk allowance is zero regardless of risk level

	members := testMembers()
	incidents := []payroll.Incident{{
		ID: "i-train-hot", Name: "特別訓練", Type: payroll.IncidentTraining,
		Duration: 5, RiskLevel: 5,
		Participants: []payroll.MemberID{"m-member"},
	}}
	s := payroll.NewSession(payroll.TypeDispatch, 2024, members, incidents)
	s.SelectIncident("i-train-hot")
	s.SetParticipationHours("m-member", "i-train-hot", 5)

	c := defaultEngine().Recompute(s)[0]
	// member multiplier 1.0, training rate 1500: base = 1500 * 5 = 7500
	assertYen(t, "base allowance", c.Dispatch.BaseAllowance, 7500)
	assertYen(t, "risk allowance", c.Dispatch.RiskAllowance, 0)
	assertYen(t, "total", c.TotalAmount, 7500)
}

func TestDispatch_PolicyDisablesAllowances(t *testing.T) {
	// GIVEN: Policy switches for leadership and equipment turned off
	// WHEN: Recomputing with both flags set on the record
	// THEN: Only base and risk remain

	s := newDispatchSession()
	s.SelectIncident("i-fire")
	s.SetParticipationHours("m-chief", "i-fire", 4)
	s.SetLeadershipRole("m-chief", "i-fire", true)
	s.SetSpecialEquipmentUsed("m-chief", "i-fire", true)

	engine := payroll.NewEngine(payroll.DefaultTables(), payroll.CalcPolicy{})
	c := engine.Recompute(s)[0]
	assertYen(t, "leadership allowance", c.Dispatch.LeadershipAllowance, 0)
	assertYen(t, "equipment allowance", c.Dispatch.EquipmentAllowance, 0)
	assertYen(t, "total", c.TotalAmount, 22080) // 19200 + 2880
}

func TestDispatch_AccumulatesAcrossIncidents(t *testing.T) {
	// GIVEN: One member with hours on two incidents
	// WHEN: Recomputing
	// THEN: Allowances accumulate; incident lines follow selection order

	s := newDispatchSession()
	s.SelectIncident("i-fire")
	s.SelectIncident("i-training")
	s.SetParticipationHours("m-chief", "i-fire", 4)
	s.SetParticipationHours("m-chief", "i-training", 3)

	calcs := defaultEngine().Recompute(s)

	var chief *payroll.PayrollCalculation
	for i := range calcs {
		if calcs[i].MemberID == "m-chief" {
			chief = &calcs[i]
		}
	}
	if chief == nil {
		t.Fatal("chief calculation missing")
	}

	// fire: 3000 * 1.6 * 4 = 19200; training: 1500 * 1.6 * 3 = 7200
	assertYen(t, "base allowance", chief.Dispatch.BaseAllowance, 26400)
	assertYen(t, "risk allowance", chief.Dispatch.RiskAllowance, 2880)
	assertYen(t, "total", chief.TotalAmount, 29280)

	if chief.Dispatch.TotalHours != 7 {
		t.Errorf("expected 7 total hours, got %v", chief.Dispatch.TotalHours)
	}
	if len(chief.Dispatch.Incidents) != 2 {
		t.Fatalf("expected 2 incident lines, got %d", len(chief.Dispatch.Incidents))
	}
	if chief.Dispatch.Incidents[0].IncidentID != "i-fire" ||
		chief.Dispatch.Incidents[1].IncidentID != "i-training" {
		t.Errorf("incident lines out of selection order: %v", chief.Dispatch.Incidents)
	}
}

func TestDispatch_LinesCarryWithholdingBreakdown(t *testing.T) {
	// GIVEN: A record with deductions on the worked-example line
	// WHEN: Recomputing
	// THEN: The line's withholding derives from its pay:
	//       tax = floor(29920 * 0.1021) = 3054, transfer = 29920-3054-500

	s := newDispatchSession()
	s.SelectIncident("i-fire")
	s.SetParticipationHours("m-chief", "i-fire", 4)
	s.SetLeadershipRole("m-chief", "i-fire", true)
	s.SetSpecialEquipmentUsed("m-chief", "i-fire", true)
	s.SetOtherDeductions("m-chief", "i-fire", yen(500))

	line := defaultEngine().Recompute(s)[0].Dispatch.Incidents[0]
	assertYen(t, "line reward", line.Withholding.Reward, 29920)
	assertYen(t, "line withholding tax", line.Withholding.WithholdingTax, 3054)
	assertYen(t, "line other deductions", line.Withholding.OtherDeductions, 500)
	assertYen(t, "line transfer", line.Withholding.Transfer, 26366)
}

func TestDispatch_WithholdingRederivedOnRecordUpdate(t *testing.T) {
	// GIVEN: A computed line
	// WHEN: Changing hours and deductions and recomputing
	// THEN: The breakdown follows the new pay; nothing stale survives

	s := newDispatchSession()
	s.SelectIncident("i-fire")
	s.SetParticipationHours("m-chief", "i-fire", 4)

	engine := defaultEngine()
	before := engine.Recompute(s)[0].Dispatch.Incidents[0]
	// base 19200 + risk 2880 = 22080; tax = floor(22080 * 0.1021) = 2254
	assertYen(t, "initial tax", before.Withholding.WithholdingTax, 2254)
	assertYen(t, "initial transfer", before.Withholding.Transfer, 19826)

	s.SetParticipationHours("m-chief", "i-fire", 2)
	s.SetOtherDeductions("m-chief", "i-fire", yen(300))

	after := engine.Recompute(s)[0].Dispatch.Incidents[0]
	// base 9600 + risk 1440 = 11040; tax = floor(11040 * 0.1021) = 1127
	assertYen(t, "updated reward", after.Withholding.Reward, 11040)
	assertYen(t, "updated tax", after.Withholding.WithholdingTax, 1127)
	assertYen(t, "updated transfer", after.Withholding.Transfer, 9613)
}

func TestDispatch_OutputFollowsSelectionOrder(t *testing.T) {
	// GIVEN: Members selected in a specific order
	// WHEN: Recomputing
	// THEN: Calculations come back in that order

	s := newDispatchSession()
	s.SelectMember("m-member")
	s.SelectMember("m-captain")
	s.SelectMember("m-chief")

	calcs := defaultEngine().Recompute(s)
	want := []payroll.MemberID{"m-member", "m-captain", "m-chief"}
	if len(calcs) != len(want) {
		t.Fatalf("expected %d calculations, got %d", len(want), len(calcs))
	}
	for i, id := range want {
		if calcs[i].MemberID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, calcs[i].MemberID)
		}
	}
}

func TestDispatch_UnknownReferencesAreSkipped(t *testing.T) {
	// GIVEN: A member whose rank is absent from the reference tables
	// WHEN: Recomputing
	// THEN: That member contributes nothing and raises no error

	members := []payroll.Member{
		{ID: "m-ghost", Name: "幽霊", Rank: "colonel"},
		{ID: "m-member", Name: "団員", Rank: payroll.RankMember},
	}
	s := payroll.NewSession(payroll.TypeDispatch, 2024, members, testIncidents())
	s.SelectMember("m-ghost")
	s.SelectMember("m-member")

	calcs := defaultEngine().Recompute(s)
	if len(calcs) != 1 {
		t.Fatalf("expected 1 calculation, got %d", len(calcs))
	}
	if calcs[0].MemberID != "m-member" {
		t.Errorf("expected m-member, got %s", calcs[0].MemberID)
	}
}

func TestDispatch_RecomputeIsIdempotent(t *testing.T) {
	// GIVEN: A populated session
	// WHEN: Recomputing twice with no mutation in between
	// THEN: Identical totals both times

	s := newDispatchSession()
	s.SelectIncident("i-fire")
	s.SetParticipationHours("m-chief", "i-fire", 4)
	s.SetLeadershipRole("m-chief", "i-fire", true)

	engine := defaultEngine()
	first := engine.Recompute(s)
	second := engine.Recompute(s)

	if len(first) != len(second) {
		t.Fatalf("length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].TotalAmount.Equal(second[i].TotalAmount) {
			t.Errorf("member %s: %v vs %v", first[i].MemberID,
				first[i].TotalAmount.Value, second[i].TotalAmount.Value)
		}
	}
}

func TestTotalAmount_SumsCalculations(t *testing.T) {
	s := newDispatchSession()
	s.SelectIncident("i-training")
	s.SetParticipationHours("m-chief", "i-training", 3)
	s.SetParticipationHours("m-member", "i-training", 3)

	calcs := defaultEngine().Recompute(s)
	// chief: 1500 * 1.6 * 3 = 7200; member: 1500 * 1.0 * 3 = 4500
	assertYen(t, "aggregate", payroll.TotalAmount(calcs), 11700)
}
