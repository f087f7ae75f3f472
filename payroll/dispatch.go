/*
dispatch.go - Per-incident dispatch stipend calculation

FORMULA (per member x incident with hours > 0):
  basePay    = baseRate * rankMultiplier * hours
  riskPay    = basePay * (riskMultiplier - 1) * riskLevel * 0.1
  leadership = basePay * 0.2          (policy switch, leadership role)
  equipment  = 1000 yen * hours       (policy switch, special equipment)

  The risk term vanishes for any incident type whose risk multiplier is
  exactly 1.0, whatever the risk level. That is intentional: only
  elevated-risk categories pay a risk allowance.

ACCUMULATION:
  Allowances accumulate per member across all selected incidents.
  totalAmount = base + risk + leadership + equipment, exactly.

WITHHOLDING:
  Each pay line carries a withholding breakdown derived from the line's
  pay and the record's deductions (see withholding.go). Derived output,
  never stored: every recompute rebuilds it.
*/
package payroll

import "github.com/shopspring/decimal"

func (e *Engine) calculateDispatch(s *Session) []PayrollCalculation {
	calcs := make([]PayrollCalculation, 0, len(s.selectedMembers))

	for _, memberID := range s.selectedMembers {
		member, ok := s.members[memberID]
		if !ok {
			continue
		}
		rankInfo, ok := e.Tables.Rank(member.Rank)
		if !ok {
			continue
		}

		details := DispatchDetails{
			BaseAllowance:       Yen(0),
			RiskAllowance:       Yen(0),
			LeadershipAllowance: Yen(0),
			EquipmentAllowance:  Yen(0),
		}

		for _, incidentID := range s.selectedIncidents {
			incident, ok := s.incidents[incidentID]
			if !ok {
				continue
			}
			record := s.Activity(memberID, incidentID)
			if record == nil || record.ParticipationHours == 0 {
				continue
			}
			incidentType, ok := e.Tables.IncidentType(incident.Type)
			if !ok {
				continue
			}

			hours := decimal.NewFromFloat(record.ParticipationHours)
			basePay := incidentType.BaseRate.Mul(rankInfo.PayMultiplier).Mul(hours)
			riskPay := basePay.
				Mul(incidentType.RiskMultiplier.Sub(decimal.New(1, 0))).
				Mul(decimal.NewFromInt(int64(incident.RiskLevel))).
				Mul(riskLevelFactor)

			linePay := basePay.Add(riskPay)
			details.BaseAllowance = details.BaseAllowance.Add(basePay)
			details.RiskAllowance = details.RiskAllowance.Add(riskPay)

			if e.Policy.LeadershipAllowance && record.LeadershipRole {
				leadership := basePay.Mul(leadershipRate)
				details.LeadershipAllowance = details.LeadershipAllowance.Add(leadership)
				linePay = linePay.Add(leadership)
			}
			if e.Policy.SpecialEquipmentAllowance && record.SpecialEquipmentUsed {
				equipment := equipmentHourlyRate.Mul(hours)
				details.EquipmentAllowance = details.EquipmentAllowance.Add(equipment)
				linePay = linePay.Add(equipment)
			}

			details.TotalHours += record.ParticipationHours
			details.Incidents = append(details.Incidents, IncidentLine{
				IncidentID:   incidentID,
				IncidentName: incident.Name,
				Hours:        record.ParticipationHours,
				Pay:          linePay,
				Withholding:  Withholding(linePay, record.OtherDeductions),
			})
		}

		total := details.BaseAllowance.
			Add(details.RiskAllowance).
			Add(details.LeadershipAllowance).
			Add(details.EquipmentAllowance)

		calcs = append(calcs, PayrollCalculation{
			MemberID:    memberID,
			MemberName:  member.Name,
			Rank:        rankInfo.Name,
			TotalAmount: total,
			Dispatch:    &details,
		})
	}

	return calcs
}
