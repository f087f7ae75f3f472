/*
annual.go - Flat annual stipend calculation

FORMULA (per member):
  baseAmount       = override ?? rank annual base
  serviceYearBonus = override ?? yearsOfService * 2000 yen
  specialAllowance = override ?? 0
  totalAmount      = baseAmount + serviceYearBonus + specialAllowance

  Each component is independently overridable by manual entry. A member
  with no record at all falls back entirely to rank/tenure defaults.
*/
package payroll

import "github.com/shopspring/decimal"

func (e *Engine) calculateAnnual(s *Session) []PayrollCalculation {
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

		record := s.AnnualRecord(memberID)

		baseAmount := rankInfo.AnnualBase
		serviceYearBonus := serviceYearBonusPerYear.Mul(decimal.NewFromInt(int64(member.YearsOfService)))
		specialAllowance := Yen(0)
		notes := ""
		if record != nil {
			if record.BaseAmount != nil {
				baseAmount = record.BaseAmount.ClampNonNegative()
			}
			if record.ServiceYearBonus != nil {
				serviceYearBonus = record.ServiceYearBonus.ClampNonNegative()
			}
			if record.SpecialAllowance != nil {
				specialAllowance = record.SpecialAllowance.ClampNonNegative()
			}
			notes = record.Notes
		}

		calcs = append(calcs, PayrollCalculation{
			MemberID:    memberID,
			MemberName:  member.Name,
			Rank:        rankInfo.Name,
			TotalAmount: baseAmount.Add(serviceYearBonus).Add(specialAllowance),
			Annual: &AnnualDetails{
				Year:             s.Year,
				BaseAmount:       baseAmount,
				ServiceYearBonus: serviceYearBonus,
				SpecialAllowance: specialAllowance,
				YearsOfService:   member.YearsOfService,
				Notes:            notes,
			},
		})
	}

	return calcs
}
