/*
scenarios.go - Loadable demo datasets

PURPOSE:
  Seeds the store with known demo data so the system is explorable
  without manual entry. Each scenario is deterministic: loading one
  writes the same rows every time, replacing rows with matching ids.

SCENARIOS:
  standard:     Full demo - roster, incidents, and batches in every
                lifecycle state (paid, confirmed, draft).
  roster-only:  Just the brigade roster, for starting a batch from
                scratch.
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/warp/stipend-engine/batch"
	"github.com/warp/stipend-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard",
		Name:        "標準デモデータ",
		Description: "Roster, incidents, and batches in every lifecycle state",
	},
	{
		ID:          "roster-only",
		Name:        "団員名簿のみ",
		Description: "Brigade roster without incidents or batches",
	},
}

func seedMembers() []payroll.Member {
	return []payroll.Member{
		{ID: "mem001", Name: "山田太郎", Rank: payroll.RankCaptain, YearsOfService: 15, JoinDate: date(2009, 4, 1)},
		{ID: "mem002", Name: "佐藤次郎", Rank: payroll.RankChief, YearsOfService: 10, JoinDate: date(2014, 4, 1)},
		{ID: "mem003", Name: "鈴木三郎", Rank: payroll.RankSergeant, YearsOfService: 8, JoinDate: date(2016, 4, 1)},
		{ID: "mem004", Name: "田中四郎", Rank: payroll.RankMember, YearsOfService: 5, JoinDate: date(2019, 4, 1)},
		{ID: "mem005", Name: "高橋五郎", Rank: payroll.RankMember, YearsOfService: 3, JoinDate: date(2021, 4, 1)},
	}
}

func seedIncidents() []payroll.Incident {
	return []payroll.Incident{
		{
			ID: "inc001", Name: "住宅火災", Type: payroll.IncidentFire,
			Date: date(2024, 6, 15), Duration: 4, RiskLevel: 3,
			Description:  "木造住宅の火災、延焼防止活動",
			Participants: []payroll.MemberID{"mem001", "mem002", "mem003", "mem004"},
		},
		{
			ID: "inc002", Name: "山林捜索救助", Type: payroll.IncidentRescue,
			Date: date(2024, 6, 20), Duration: 6, RiskLevel: 2,
			Description:  "行方不明者の山林捜索",
			Participants: []payroll.MemberID{"mem002", "mem003", "mem005"},
		},
		{
			ID: "inc003", Name: "定期訓練", Type: payroll.IncidentTraining,
			Date: date(2024, 7, 5), Duration: 3, RiskLevel: 1,
			Description:  "放水訓練および機器点検",
			Participants: []payroll.MemberID{"mem001", "mem002", "mem003", "mem004", "mem005"},
		},
		{
			ID: "inc004", Name: "夜間警戒巡視", Type: payroll.IncidentPatrol,
			Date: date(2024, 7, 12), Duration: 2, RiskLevel: 1,
			Description:  "祭礼に伴う夜間巡視",
			Participants: []payroll.MemberID{"mem003", "mem004"},
		},
	}
}

func seedBatches() []batch.PaymentBatch {
	confirmed1 := date(2024, 7, 5)
	paid1 := date(2024, 7, 10)
	confirmed2 := date(2024, 8, 5)
	scheduled2 := date(2024, 8, 10)

	return []batch.PaymentBatch{
		{
			ID: "pay001", Name: "2024年6月 出動手当", Type: payroll.TypeDispatch,
			Status: batch.StatusPaid, CreatedDate: date(2024, 6, 30),
			ConfirmedDate: &confirmed1, PaymentDate: &paid1,
			Description: "6月分の出動手当", CreatedBy: "admin",
			TotalAmount: payroll.Yen(125400), MemberCount: 4,
		},
		{
			ID: "pay002", Name: "2024年7月 出動手当", Type: payroll.TypeDispatch,
			Status: batch.StatusConfirmed, CreatedDate: date(2024, 7, 31),
			ConfirmedDate: &confirmed2, ScheduledPaymentDate: &scheduled2,
			Description: "7月分の出動手当", CreatedBy: "admin",
			TotalAmount: payroll.Yen(48300), MemberCount: 5,
		},
		{
			ID: "pay003", Name: "2024年度 年額報酬", Type: payroll.TypeAnnual,
			Status: batch.StatusDraft, CreatedDate: date(2024, 8, 15),
			Description: "年額報酬の支払準備", CreatedBy: "admin",
			TotalAmount: payroll.Yen(0),
		},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario seeds the store with the selected scenario's data.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var err error
	switch req.ID {
	case "standard":
		err = h.seed(r.Context(), true)
	case "roster-only":
		err = h.seed(r.Context(), false)
	default:
		writeError(w, http.StatusBadRequest, "unknown scenario", req.ID)
		return
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ID})
}

func (h *Handler) seed(ctx context.Context, full bool) error {
	for _, m := range seedMembers() {
		if err := h.store.SaveMember(ctx, m); err != nil {
			return err
		}
	}
	if !full {
		return nil
	}
	for _, in := range seedIncidents() {
		if err := h.store.SaveIncident(ctx, in); err != nil {
			return err
		}
	}
	for _, b := range seedBatches() {
		if err := h.batches.Store.Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Seed loads the standard scenario directly. Used by cmd/server at
// startup when -seed is set.
func (h *Handler) Seed(ctx context.Context) error {
	return h.seed(ctx, true)
}
