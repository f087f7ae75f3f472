/*
session.go - Calculation session state for one open batch

PURPOSE:
  A Session holds everything the UI accumulates while a payment batch is
  open for calculation: which incidents and members are selected, the
  activity records entered so far, and (for annual batches) the target
  year and per-member overrides. The session is an explicit value the
  caller owns - created when a batch is opened, discarded when it is
  closed - so the engine itself stays stateless.

SELECTION RULES:
  - Selecting an incident auto-includes its participants as candidate
    payees.
  - Deselecting an incident removes members that no other selected
    incident references, along with their activity records.
  - Deselecting a member drops that member's activity records.
  - Selection order is preserved; calculation output follows it.

INPUT GUARDS:
  Setters clamp out-of-range input at the boundary: participation hours
  to [0, incident duration], monetary overrides to >= 0. The surrounding
  UI constrains ranges too, but the session must not let malformed input
  produce negative totals.

SEE ALSO:
  - engine.go: Recompute derives calculations from a session
  - dispatch.go / annual.go: What the records feed into
*/
package payroll

// =============================================================================
// SESSION
// =============================================================================

type activityKey struct {
	Member   MemberID
	Incident IncidentID
}

// Session is the mutable state for one batch-calculation sitting.
// Not safe for concurrent use; the system is single-actor by design.
type Session struct {
	Kind PaymentType
	Year int // target year for annual batches

	members   map[MemberID]Member
	incidents map[IncidentID]Incident

	selectedMembers   []MemberID
	selectedIncidents []IncidentID

	activity map[activityKey]*ActivityRecord
	annual   map[MemberID]*AnnualPaymentRecord
}

// NewSession creates a session over the given datasets. The member and
// incident slices are indexed, not copied deeply; they are treated as
// read-only for the life of the session.
func NewSession(kind PaymentType, year int, members []Member, incidents []Incident) *Session {
	s := &Session{
		Kind:      kind,
		Year:      year,
		members:   make(map[MemberID]Member, len(members)),
		incidents: make(map[IncidentID]Incident, len(incidents)),
		activity:  make(map[activityKey]*ActivityRecord),
		annual:    make(map[MemberID]*AnnualPaymentRecord),
	}
	for _, m := range members {
		s.members[m.ID] = m
	}
	for _, in := range incidents {
		s.incidents[in.ID] = in
	}
	return s
}

// =============================================================================
// SELECTION
// =============================================================================

// SelectIncident adds an incident to the calculation and auto-includes
// its participants. Unknown ids are ignored.
func (s *Session) SelectIncident(id IncidentID) {
	incident, ok := s.incidents[id]
	if !ok || s.incidentSelected(id) {
		return
	}
	s.selectedIncidents = append(s.selectedIncidents, id)
	for _, memberID := range incident.Participants {
		s.SelectMember(memberID)
	}
}

// DeselectIncident removes an incident, its activity records, and any
// member no remaining selected incident references.
func (s *Session) DeselectIncident(id IncidentID) {
	if !s.incidentSelected(id) {
		return
	}
	s.selectedIncidents = removeID(s.selectedIncidents, id)
	for k := range s.activity {
		if k.Incident == id {
			delete(s.activity, k)
		}
	}

	// Keep only members still referenced by a selected incident.
	referenced := make(map[MemberID]bool)
	for _, incidentID := range s.selectedIncidents {
		for _, memberID := range s.incidents[incidentID].Participants {
			referenced[memberID] = true
		}
	}
	var kept []MemberID
	for _, memberID := range s.selectedMembers {
		if referenced[memberID] {
			kept = append(kept, memberID)
			continue
		}
		s.dropMemberRecords(memberID)
	}
	s.selectedMembers = kept
}

// SelectMember adds a member to the calculation. Unknown ids are ignored.
func (s *Session) SelectMember(id MemberID) {
	if _, ok := s.members[id]; !ok || s.memberSelected(id) {
		return
	}
	s.selectedMembers = append(s.selectedMembers, id)
}

// DeselectMember removes a member and their records.
func (s *Session) DeselectMember(id MemberID) {
	if !s.memberSelected(id) {
		return
	}
	s.selectedMembers = removeID(s.selectedMembers, id)
	s.dropMemberRecords(id)
}

func (s *Session) dropMemberRecords(id MemberID) {
	for k := range s.activity {
		if k.Member == id {
			delete(s.activity, k)
		}
	}
	delete(s.annual, id)
}

func (s *Session) incidentSelected(id IncidentID) bool {
	for _, v := range s.selectedIncidents {
		if v == id {
			return true
		}
	}
	return false
}

func (s *Session) memberSelected(id MemberID) bool {
	for _, v := range s.selectedMembers {
		if v == id {
			return true
		}
	}
	return false
}

// SelectedMembers returns the selection in insertion order.
func (s *Session) SelectedMembers() []MemberID {
	return append([]MemberID{}, s.selectedMembers...)
}

// SelectedIncidents returns the selection in insertion order.
func (s *Session) SelectedIncidents() []IncidentID {
	return append([]IncidentID{}, s.selectedIncidents...)
}

// Member looks up a member from the session's dataset.
func (s *Session) Member(id MemberID) (Member, bool) {
	m, ok := s.members[id]
	return m, ok
}

// Incident looks up an incident from the session's dataset.
func (s *Session) Incident(id IncidentID) (Incident, bool) {
	in, ok := s.incidents[id]
	return in, ok
}

// =============================================================================
// ACTIVITY RECORDS (dispatch batches)
// =============================================================================

// Activity returns the record for a (member, incident) pair, or nil.
func (s *Session) Activity(memberID MemberID, incidentID IncidentID) *ActivityRecord {
	return s.activity[activityKey{Member: memberID, Incident: incidentID}]
}

func (s *Session) activityRecord(memberID MemberID, incidentID IncidentID) *ActivityRecord {
	k := activityKey{Member: memberID, Incident: incidentID}
	if rec, ok := s.activity[k]; ok {
		return rec
	}
	rec := &ActivityRecord{MemberID: memberID, IncidentID: incidentID}
	s.activity[k] = rec
	return rec
}

// SetParticipationHours records hours for a pair, clamped to
// [0, incident duration]. Unknown incident ids clamp only at zero.
func (s *Session) SetParticipationHours(memberID MemberID, incidentID IncidentID, hours float64) {
	if hours < 0 {
		hours = 0
	}
	if incident, ok := s.incidents[incidentID]; ok && hours > incident.Duration {
		hours = incident.Duration
	}
	s.activityRecord(memberID, incidentID).ParticipationHours = hours
}

func (s *Session) SetLeadershipRole(memberID MemberID, incidentID IncidentID, leader bool) {
	s.activityRecord(memberID, incidentID).LeadershipRole = leader
}

func (s *Session) SetSpecialEquipmentUsed(memberID MemberID, incidentID IncidentID, used bool) {
	s.activityRecord(memberID, incidentID).SpecialEquipmentUsed = used
}

// SetOtherDeductions records per-record deductions, clamped to >= 0.
// The withholding breakdown on the record's pay line picks them up at
// the next recompute.
func (s *Session) SetOtherDeductions(memberID MemberID, incidentID IncidentID, amount Money) {
	s.activityRecord(memberID, incidentID).OtherDeductions = amount.ClampNonNegative()
}

func (s *Session) SetActivityNotes(memberID MemberID, incidentID IncidentID, notes string) {
	s.activityRecord(memberID, incidentID).Notes = notes
}

// =============================================================================
// ANNUAL RECORDS (annual batches)
// =============================================================================

// AnnualRecord returns the override record for a member in the session's
// target year, or nil when no overrides were entered.
func (s *Session) AnnualRecord(memberID MemberID) *AnnualPaymentRecord {
	return s.annual[memberID]
}

func (s *Session) annualRecord(memberID MemberID) *AnnualPaymentRecord {
	if rec, ok := s.annual[memberID]; ok {
		return rec
	}
	rec := &AnnualPaymentRecord{MemberID: memberID, Year: s.Year}
	s.annual[memberID] = rec
	return rec
}

// SetAnnualBase overrides the base amount, clamped to >= 0.
func (s *Session) SetAnnualBase(memberID MemberID, amount Money) {
	v := amount.ClampNonNegative()
	s.annualRecord(memberID).BaseAmount = &v
}

// SetServiceYearBonus overrides the tenure bonus, clamped to >= 0.
func (s *Session) SetServiceYearBonus(memberID MemberID, amount Money) {
	v := amount.ClampNonNegative()
	s.annualRecord(memberID).ServiceYearBonus = &v
}

// SetSpecialAllowance overrides the special allowance, clamped to >= 0.
func (s *Session) SetSpecialAllowance(memberID MemberID, amount Money) {
	v := amount.ClampNonNegative()
	s.annualRecord(memberID).SpecialAllowance = &v
}

func (s *Session) SetAnnualNotes(memberID MemberID, notes string) {
	s.annualRecord(memberID).Notes = notes
}

// =============================================================================
// HELPERS
// =============================================================================

func removeID[T comparable](ids []T, id T) []T {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
