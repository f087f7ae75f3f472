/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements the REST endpoints. Handlers follow a uniform shape:
  1. Parse/validate input (path params, JSON body)
  2. Call domain logic (batch service, engine, store)
  3. Map domain errors to HTTP status codes
  4. Write the JSON response

ERROR MAPPING:
  batch.ErrBatchNotFound      -> 404
  batch.ErrInvalidTransition  -> 409
  batch.ErrBatchLocked        -> 409
  batch.ErrBatchNotDeletable  -> 409
  validation failures         -> 400
  everything else             -> 500

SESSIONS:
  A calculation session is opened per batch and held in memory. The
  handler guards the session map with a mutex; the sessions themselves
  are single-actor and are never shared across batches.

SEE ALSO:
  - server.go: Route registration
  - dto.go: Request/response types
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/stipend-engine/batch"
	"github.com/warp/stipend-engine/payroll"
	"github.com/warp/stipend-engine/store/sqlite"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	store   *sqlite.Store
	batches *batch.Service
	engine  *payroll.Engine

	mu       sync.Mutex
	sessions map[batch.BatchID]*payroll.Session
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(store *sqlite.Store, batches *batch.Service, engine *payroll.Engine) *Handler {
	return &Handler{
		store:    store,
		batches:  batches,
		engine:   engine,
		sessions: make(map[batch.BatchID]*payroll.Session),
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are gone; nothing useful left to do.
			return
		}
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, batch.ErrBatchNotFound):
		writeError(w, http.StatusNotFound, "batch not found", err.Error())
	case errors.Is(err, batch.ErrInvalidTransition),
		errors.Is(err, batch.ErrBatchLocked),
		errors.Is(err, batch.ErrBatchNotDeletable):
		writeError(w, http.StatusConflict, "operation not allowed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// BATCHES
// =============================================================================

// ListBatches returns all payment batches, optionally filtered by status.
// GET /api/batches?status=draft
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batches.Store.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	statusFilter := batch.Status(r.URL.Query().Get("status"))
	if statusFilter != "" && !statusFilter.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status filter", string(statusFilter))
		return
	}

	dtos := make([]BatchDTO, 0, len(batches))
	for i := range batches {
		if statusFilter != "" && batches[i].Status != statusFilter {
			continue
		}
		dtos = append(dtos, batchDTO(&batches[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBatch opens a new draft batch.
// POST /api/batches
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "")
		return
	}
	kind := payroll.PaymentType(req.Type)
	if kind != payroll.TypeDispatch && kind != payroll.TypeAnnual {
		writeError(w, http.StatusBadRequest, "type must be dispatch or annual", req.Type)
		return
	}

	b, err := h.batches.Create(r.Context(), batch.BatchID(req.ID), req.Name, kind, req.Description, req.CreatedBy)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchDTO(b))
}

// GetBatch returns one batch.
// GET /api/batches/{id}
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	b, err := h.batches.Store.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "batch not found", string(id))
		return
	}
	writeJSON(w, http.StatusOK, batchDTO(b))
}

// UpdateBatch renames or re-describes a draft batch.
// PUT /api/batches/{id}
func (h *Handler) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	var req UpdateBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "")
		return
	}

	b, err := h.batches.UpdateDetails(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchDTO(b))
}

// DeleteBatch removes a batch and closes any open session on it.
// DELETE /api/batches/{id}
func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	if err := h.batches.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.closeSession(id)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": string(id)})
}

// BatchSummary returns batch counts per status for the dashboard.
// GET /api/batches/summary
func (h *Handler) BatchSummary(w http.ResponseWriter, r *http.Request) {
	batches, err := h.batches.Store.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	summary := BatchSummaryDTO{Total: len(batches)}
	for _, b := range batches {
		switch b.Status {
		case batch.StatusDraft:
			summary.Draft++
		case batch.StatusConfirmed:
			summary.Confirmed++
		case batch.StatusPaid:
			summary.Paid++
		case batch.StatusCancelled:
			summary.Cancelled++
		}
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// LIFECYCLE ACTIONS
// =============================================================================

// ConfirmBatch finalizes a draft batch for payment.
// POST /api/batches/{id}/confirm
func (h *Handler) ConfirmBatch(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))

	var req ConfirmBatchRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}
	var scheduled *time.Time
	if req.ScheduledPaymentDate != "" {
		t, err := time.Parse("2006-01-02", req.ScheduledPaymentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid scheduled_payment_date", req.ScheduledPaymentDate)
			return
		}
		scheduled = &t
	}

	b, err := h.batches.Confirm(r.Context(), id, scheduled)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchDTO(b))
}

// RevertBatch reopens a confirmed batch for editing.
// POST /api/batches/{id}/revert
func (h *Handler) RevertBatch(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	b, err := h.batches.Revert(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchDTO(b))
}

// PayBatch records that a confirmed batch has been disbursed.
// POST /api/batches/{id}/pay
func (h *Handler) PayBatch(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	b, err := h.batches.MarkPaid(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.closeSession(id)
	writeJSON(w, http.StatusOK, batchDTO(b))
}

// CancelBatch terminally withdraws a draft batch.
// POST /api/batches/{id}/cancel
func (h *Handler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	b, err := h.batches.Cancel(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.closeSession(id)
	writeJSON(w, http.StatusOK, batchDTO(b))
}

// =============================================================================
// CALCULATION SESSIONS
// =============================================================================

func (h *Handler) session(id batch.BatchID) *payroll.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[id]
}

func (h *Handler) closeSession(id batch.BatchID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

// OpenSession opens a calculation session for an editable batch, loading
// the roster and incident list into it.
// POST /api/batches/{id}/session
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))

	var req OpenSessionRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	b, err := h.batches.Store.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "batch not found", string(id))
		return
	}
	if !b.Editable() {
		writeError(w, http.StatusConflict, "batch is not editable",
			"status "+string(b.Status))
		return
	}

	members, err := h.store.ListMembers(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	incidents, err := h.store.ListIncidents(r.Context(), "")
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}
	s := payroll.NewSession(b.Type, year, members, incidents)

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, sessionDTO(id, s))
}

// GetSession returns the session's current selection state.
// GET /api/batches/{id}/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	s := h.session(id)
	if s == nil {
		writeError(w, http.StatusNotFound, "no open session", string(id))
		return
	}
	writeJSON(w, http.StatusOK, sessionDTO(id, s))
}

// CloseSession discards the session without committing.
// DELETE /api/batches/{id}/session
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	h.closeSession(id)
	writeJSON(w, http.StatusOK, map[string]string{"closed": string(id)})
}

// UpdateSelection toggles an incident or member selection.
// POST /api/batches/{id}/session/selection
func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	s := h.session(id)
	if s == nil {
		writeError(w, http.StatusNotFound, "no open session", string(id))
		return
	}

	var req SelectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	switch {
	case req.IncidentID != "":
		if req.Selected {
			s.SelectIncident(payroll.IncidentID(req.IncidentID))
		} else {
			s.DeselectIncident(payroll.IncidentID(req.IncidentID))
		}
	case req.MemberID != "":
		if req.Selected {
			s.SelectMember(payroll.MemberID(req.MemberID))
		} else {
			s.DeselectMember(payroll.MemberID(req.MemberID))
		}
	default:
		writeError(w, http.StatusBadRequest, "incident_id or member_id required", "")
		return
	}
	writeJSON(w, http.StatusOK, sessionDTO(id, s))
}

// UpdateActivity updates one (member, incident) activity record.
// POST /api/batches/{id}/session/activity
func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	s := h.session(id)
	if s == nil {
		writeError(w, http.StatusNotFound, "no open session", string(id))
		return
	}

	var req ActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MemberID == "" || req.IncidentID == "" {
		writeError(w, http.StatusBadRequest, "member_id and incident_id required", "")
		return
	}

	memberID := payroll.MemberID(req.MemberID)
	incidentID := payroll.IncidentID(req.IncidentID)
	if req.ParticipationHours != nil {
		s.SetParticipationHours(memberID, incidentID, *req.ParticipationHours)
	}
	if req.LeadershipRole != nil {
		s.SetLeadershipRole(memberID, incidentID, *req.LeadershipRole)
	}
	if req.SpecialEquipmentUsed != nil {
		s.SetSpecialEquipmentUsed(memberID, incidentID, *req.SpecialEquipmentUsed)
	}
	if req.OtherDeductions != nil {
		s.SetOtherDeductions(memberID, incidentID, payroll.Yen(*req.OtherDeductions))
	}
	if req.Notes != nil {
		s.SetActivityNotes(memberID, incidentID, *req.Notes)
	}
	writeJSON(w, http.StatusOK, calculationResultDTO(s, h.engine.Recompute(s)))
}

// UpdateAnnualRecord updates one member's annual overrides.
// POST /api/batches/{id}/session/annual
func (h *Handler) UpdateAnnualRecord(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	s := h.session(id)
	if s == nil {
		writeError(w, http.StatusNotFound, "no open session", string(id))
		return
	}

	var req AnnualRecordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MemberID == "" {
		writeError(w, http.StatusBadRequest, "member_id required", "")
		return
	}

	memberID := payroll.MemberID(req.MemberID)
	if req.BaseAmount != nil {
		s.SetAnnualBase(memberID, payroll.Yen(*req.BaseAmount))
	}
	if req.ServiceYearBonus != nil {
		s.SetServiceYearBonus(memberID, payroll.Yen(*req.ServiceYearBonus))
	}
	if req.SpecialAllowance != nil {
		s.SetSpecialAllowance(memberID, payroll.Yen(*req.SpecialAllowance))
	}
	if req.Notes != nil {
		s.SetAnnualNotes(memberID, *req.Notes)
	}
	writeJSON(w, http.StatusOK, calculationResultDTO(s, h.engine.Recompute(s)))
}

// GetCalculations recomputes and returns the full calculation list.
// GET /api/batches/{id}/calculations
func (h *Handler) GetCalculations(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	s := h.session(id)
	if s == nil {
		writeError(w, http.StatusNotFound, "no open session", string(id))
		return
	}
	writeJSON(w, http.StatusOK, calculationResultDTO(s, h.engine.Recompute(s)))
}

// CommitBatch snapshots the session's calculation aggregate onto the
// batch and persists it.
// POST /api/batches/{id}/commit
func (h *Handler) CommitBatch(w http.ResponseWriter, r *http.Request) {
	id := batch.BatchID(chi.URLParam(r, "id"))
	s := h.session(id)
	if s == nil {
		writeError(w, http.StatusNotFound, "no open session", string(id))
		return
	}

	calcs := h.engine.Recompute(s)
	b, err := h.batches.Commit(r.Context(), id, calcs)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchDTO(b))
}

func sessionDTO(id batch.BatchID, s *payroll.Session) SessionDTO {
	dto := SessionDTO{
		BatchID:           string(id),
		Type:              string(s.Kind),
		Year:              s.Year,
		SelectedIncidents: make([]string, 0),
		SelectedMembers:   make([]string, 0),
	}
	for _, incidentID := range s.SelectedIncidents() {
		dto.SelectedIncidents = append(dto.SelectedIncidents, string(incidentID))
	}
	for _, memberID := range s.SelectedMembers() {
		dto.SelectedMembers = append(dto.SelectedMembers, string(memberID))
	}
	return dto
}

func calculationResultDTO(s *payroll.Session, calcs []payroll.PayrollCalculation) CalculationResultDTO {
	result := CalculationResultDTO{
		Calculations:  make([]CalculationDTO, 0, len(calcs)),
		MemberCount:   len(calcs),
		IncidentCount: len(s.SelectedIncidents()),
		TotalAmount:   moneyDTO(payroll.TotalAmount(calcs)),
	}
	for _, c := range calcs {
		result.Calculations = append(result.Calculations, calculationDTO(c))
		if c.Dispatch != nil {
			result.TotalHours += c.Dispatch.TotalHours
		}
	}
	return result
}

// =============================================================================
// MEMBERS AND INCIDENTS
// =============================================================================

// ListMembers returns the brigade roster.
// GET /api/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.ListMembers(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, h.memberDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMember returns one roster entry.
// GET /api/members/{id}
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id := payroll.MemberID(chi.URLParam(r, "id"))
	m, err := h.store.GetMember(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "member not found", string(id))
		return
	}
	writeJSON(w, http.StatusOK, h.memberDTO(*m))
}

// ListIncidents returns incidents, optionally filtered by type.
// GET /api/incidents?type=fire
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	typeFilter := payroll.IncidentTypeKey(r.URL.Query().Get("type"))
	if typeFilter != "" {
		if _, ok := h.engine.Tables.IncidentType(typeFilter); !ok {
			writeError(w, http.StatusBadRequest, "unknown incident type", string(typeFilter))
			return
		}
	}

	incidents, err := h.store.ListIncidents(r.Context(), typeFilter)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]IncidentDTO, 0, len(incidents))
	for _, in := range incidents {
		dtos = append(dtos, h.incidentDTO(in))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) memberDTO(m payroll.Member) MemberDTO {
	dto := MemberDTO{
		ID:             string(m.ID),
		Name:           m.Name,
		Rank:           string(m.Rank),
		YearsOfService: m.YearsOfService,
		JoinDate:       m.JoinDate.Format("2006-01-02"),
	}
	if rank, ok := h.engine.Tables.Rank(m.Rank); ok {
		dto.RankName = rank.Name
	}
	return dto
}

func (h *Handler) incidentDTO(in payroll.Incident) IncidentDTO {
	dto := IncidentDTO{
		ID:           string(in.ID),
		Name:         in.Name,
		Type:         string(in.Type),
		Date:         in.Date.Format("2006-01-02"),
		Duration:     in.Duration,
		RiskLevel:    in.RiskLevel,
		Description:  in.Description,
		Participants: make([]string, 0, len(in.Participants)),
	}
	if it, ok := h.engine.Tables.IncidentType(in.Type); ok {
		dto.TypeName = it.Name
	}
	for _, memberID := range in.Participants {
		dto.Participants = append(dto.Participants, string(memberID))
	}
	return dto
}

// =============================================================================
// WITHHOLDING
// =============================================================================

// PreviewWithholding derives a withholding breakdown for a gross reward.
// POST /api/withholding
func (h *Handler) PreviewWithholding(w http.ResponseWriter, r *http.Request) {
	var req WithholdingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	stmt := payroll.Withholding(payroll.Yen(req.RewardAmount), payroll.Yen(req.OtherDeductions))
	writeJSON(w, http.StatusOK, withholdingDTO(stmt))
}
