/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific formatting (display currency strings)
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

CURRENCY:
  Monetary fields are serialized twice: a raw whole-yen number for
  arithmetic on the client, and a pre-formatted display string
  ("¥29,920") so the front end never re-implements formatting.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/format.go: The display formatter
*/
package api

import (
	"time"

	"github.com/warp/stipend-engine/batch"
	"github.com/warp/stipend-engine/payroll"
)

// =============================================================================
// MONEY
// =============================================================================

// MoneyDTO carries a whole-yen amount plus its display form.
type MoneyDTO struct {
	Amount  int64  `json:"amount"`
	Display string `json:"display"`
}

func moneyDTO(m payroll.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Int64(), Display: payroll.FormatYen(m)}
}

// =============================================================================
// BATCHES
// =============================================================================

// BatchDTO represents a payment batch in API responses.
type BatchDTO struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Type                 string   `json:"type"`
	Status               string   `json:"status"`
	StatusLabel          string   `json:"status_label"`
	CreatedDate          string   `json:"created_date"`
	ConfirmedDate        *string  `json:"confirmed_date,omitempty"`
	ScheduledPaymentDate *string  `json:"scheduled_payment_date,omitempty"`
	PaymentDate          *string  `json:"payment_date,omitempty"`
	Description          string   `json:"description,omitempty"`
	TotalAmount          MoneyDTO `json:"total_amount"`
	MemberCount          int      `json:"member_count"`
	CreatedBy            string   `json:"created_by,omitempty"`
	Editable             bool     `json:"editable"`
	Deletable            bool     `json:"deletable"`
}

func batchDTO(b *batch.PaymentBatch) BatchDTO {
	return BatchDTO{
		ID:                   string(b.ID),
		Name:                 b.Name,
		Type:                 string(b.Type),
		Status:               string(b.Status),
		StatusLabel:          b.Status.Label(),
		CreatedDate:          b.CreatedDate.Format("2006-01-02"),
		ConfirmedDate:        datePtr(b.ConfirmedDate),
		ScheduledPaymentDate: datePtr(b.ScheduledPaymentDate),
		PaymentDate:          datePtr(b.PaymentDate),
		Description:          b.Description,
		TotalAmount:          moneyDTO(b.TotalAmount),
		MemberCount:          b.MemberCount,
		CreatedBy:            b.CreatedBy,
		Editable:             b.Editable(),
		Deletable:            b.Deletable(),
	}
}

// CreateBatchRequest is the request to create a batch.
type CreateBatchRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Type        string `json:"type"` // "dispatch" | "annual"
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
}

// UpdateBatchRequest renames or re-describes a draft batch.
type UpdateBatchRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ConfirmBatchRequest carries the optional scheduled payment date.
type ConfirmBatchRequest struct {
	ScheduledPaymentDate string `json:"scheduled_payment_date,omitempty"` // YYYY-MM-DD
}

// BatchSummaryDTO aggregates the management dashboard counters.
type BatchSummaryDTO struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Confirmed int `json:"confirmed"`
	Paid      int `json:"paid"`
	Cancelled int `json:"cancelled"`
}

// =============================================================================
// MEMBERS AND INCIDENTS
// =============================================================================

// MemberDTO represents a brigade member.
type MemberDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Rank           string `json:"rank"`
	RankName       string `json:"rank_name,omitempty"`
	YearsOfService int    `json:"years_of_service"`
	JoinDate       string `json:"join_date"`
}

// IncidentDTO represents a response event.
type IncidentDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	TypeName     string   `json:"type_name,omitempty"`
	Date         string   `json:"date"`
	Duration     float64  `json:"duration"`
	RiskLevel    int      `json:"risk_level"`
	Description  string   `json:"description,omitempty"`
	Participants []string `json:"participants"`
}

// =============================================================================
// CALCULATION SESSION
// =============================================================================

// OpenSessionRequest opens a calculation session for a batch.
type OpenSessionRequest struct {
	Year int `json:"year,omitempty"` // annual batches; defaults to current year
}

// SelectionRequest toggles an incident or member selection.
type SelectionRequest struct {
	IncidentID string `json:"incident_id,omitempty"`
	MemberID   string `json:"member_id,omitempty"`
	Selected   bool   `json:"selected"`
}

// ActivityRequest updates one (member, incident) activity record.
type ActivityRequest struct {
	MemberID             string   `json:"member_id"`
	IncidentID           string   `json:"incident_id"`
	ParticipationHours   *float64 `json:"participation_hours,omitempty"`
	LeadershipRole       *bool    `json:"leadership_role,omitempty"`
	SpecialEquipmentUsed *bool    `json:"special_equipment_used,omitempty"`
	OtherDeductions      *int64   `json:"other_deductions,omitempty"`
	Notes                *string  `json:"notes,omitempty"`
}

// AnnualRecordRequest updates one member's annual overrides.
type AnnualRecordRequest struct {
	MemberID         string  `json:"member_id"`
	BaseAmount       *int64  `json:"base_amount,omitempty"`
	ServiceYearBonus *int64  `json:"service_year_bonus,omitempty"`
	SpecialAllowance *int64  `json:"special_allowance,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// SessionDTO reflects a session's current selection state.
type SessionDTO struct {
	BatchID           string   `json:"batch_id"`
	Type              string   `json:"type"`
	Year              int      `json:"year,omitempty"`
	SelectedIncidents []string `json:"selected_incidents"`
	SelectedMembers   []string `json:"selected_members"`
}

// =============================================================================
// CALCULATIONS
// =============================================================================

// IncidentLineDTO is one incident's contribution to a member's stipend.
type IncidentLineDTO struct {
	IncidentID   string         `json:"incident_id"`
	IncidentName string         `json:"incident_name"`
	Hours        float64        `json:"hours"`
	Pay          MoneyDTO       `json:"pay"`
	Withholding  WithholdingDTO `json:"withholding"`
}

// DispatchDetailsDTO itemizes a dispatch stipend.
type DispatchDetailsDTO struct {
	TotalHours          float64           `json:"total_hours"`
	BaseAllowance       MoneyDTO          `json:"base_allowance"`
	RiskAllowance       MoneyDTO          `json:"risk_allowance"`
	LeadershipAllowance MoneyDTO          `json:"leadership_allowance"`
	EquipmentAllowance  MoneyDTO          `json:"equipment_allowance"`
	Incidents           []IncidentLineDTO `json:"incidents"`
}

// AnnualDetailsDTO itemizes an annual stipend.
type AnnualDetailsDTO struct {
	Year             int      `json:"year"`
	BaseAmount       MoneyDTO `json:"base_amount"`
	ServiceYearBonus MoneyDTO `json:"service_year_bonus"`
	SpecialAllowance MoneyDTO `json:"special_allowance"`
	YearsOfService   int      `json:"years_of_service"`
	Notes            string   `json:"notes,omitempty"`
}

// CalculationDTO is the engine's output for one member.
type CalculationDTO struct {
	MemberID    string              `json:"member_id"`
	MemberName  string              `json:"member_name"`
	Rank        string              `json:"rank"`
	TotalAmount MoneyDTO            `json:"total_amount"`
	Dispatch    *DispatchDetailsDTO `json:"dispatch,omitempty"`
	Annual      *AnnualDetailsDTO   `json:"annual,omitempty"`
}

// CalculationResultDTO is the full recompute output plus aggregates.
type CalculationResultDTO struct {
	Calculations  []CalculationDTO `json:"calculations"`
	MemberCount   int              `json:"member_count"`
	IncidentCount int              `json:"incident_count"`
	TotalHours    float64          `json:"total_hours"`
	TotalAmount   MoneyDTO         `json:"total_amount"`
}

func calculationDTO(c payroll.PayrollCalculation) CalculationDTO {
	dto := CalculationDTO{
		MemberID:    string(c.MemberID),
		MemberName:  c.MemberName,
		Rank:        c.Rank,
		TotalAmount: moneyDTO(c.TotalAmount),
	}
	if d := c.Dispatch; d != nil {
		dd := DispatchDetailsDTO{
			TotalHours:          d.TotalHours,
			BaseAllowance:       moneyDTO(d.BaseAllowance),
			RiskAllowance:       moneyDTO(d.RiskAllowance),
			LeadershipAllowance: moneyDTO(d.LeadershipAllowance),
			EquipmentAllowance:  moneyDTO(d.EquipmentAllowance),
			Incidents:           make([]IncidentLineDTO, 0, len(d.Incidents)),
		}
		for _, line := range d.Incidents {
			dd.Incidents = append(dd.Incidents, IncidentLineDTO{
				IncidentID:   string(line.IncidentID),
				IncidentName: line.IncidentName,
				Hours:        line.Hours,
				Pay:          moneyDTO(line.Pay),
				Withholding:  withholdingDTO(line.Withholding),
			})
		}
		dto.Dispatch = &dd
	}
	if a := c.Annual; a != nil {
		dto.Annual = &AnnualDetailsDTO{
			Year:             a.Year,
			BaseAmount:       moneyDTO(a.BaseAmount),
			ServiceYearBonus: moneyDTO(a.ServiceYearBonus),
			SpecialAllowance: moneyDTO(a.SpecialAllowance),
			YearsOfService:   a.YearsOfService,
			Notes:            a.Notes,
		}
	}
	return dto
}

// =============================================================================
// WITHHOLDING
// =============================================================================

// WithholdingRequest previews a withholding breakdown.
type WithholdingRequest struct {
	RewardAmount    int64 `json:"reward_amount"`
	OtherDeductions int64 `json:"other_deductions,omitempty"`
}

// WithholdingDTO is the derived breakdown.
type WithholdingDTO struct {
	RewardAmount    MoneyDTO `json:"reward_amount"`
	WithholdingTax  MoneyDTO `json:"withholding_tax"`
	OtherDeductions MoneyDTO `json:"other_deductions"`
	TransferAmount  MoneyDTO `json:"transfer_amount"`
}

func withholdingDTO(stmt payroll.WithholdingStatement) WithholdingDTO {
	return WithholdingDTO{
		RewardAmount:    moneyDTO(stmt.Reward),
		WithholdingTax:  moneyDTO(stmt.WithholdingTax),
		OtherDeductions: moneyDTO(stmt.OtherDeductions),
		TransferAmount:  moneyDTO(stmt.Transfer),
	}
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
