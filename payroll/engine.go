/*
engine.go - The stipend calculation engine

PURPOSE:
  Engine derives one PayrollCalculation per selected member from a
  session's current state. Recompute is a full re-derivation every time:
  there is no incremental update path, so there is never stale partial
  state. With the small datasets involved, the redundant work is cheap
  and the determinism is worth it.

CONTRACT:
  - Pure: no side effects, idempotent given the same session snapshot.
  - Ordered: output follows selected-member order; within a member,
    incident lines follow selected-incident order.
  - Tolerant: selections referencing unknown members, incidents, ranks,
    or incident types contribute nothing and raise no error.
*/
package payroll

// Engine computes stipend breakdowns against static reference tables.
type Engine struct {
	Tables ReferenceTables
	Policy CalcPolicy
}

func NewEngine(tables ReferenceTables, policy CalcPolicy) *Engine {
	return &Engine{Tables: tables, Policy: policy}
}

// Recompute derives the full calculation list from the session. Callers
// invoke it after any mutation; the previous result is discarded wholesale.
func (e *Engine) Recompute(s *Session) []PayrollCalculation {
	switch s.Kind {
	case TypeAnnual:
		return e.calculateAnnual(s)
	default:
		return e.calculateDispatch(s)
	}
}

// TotalAmount sums a calculation list. Used when committing a batch.
func TotalAmount(calcs []PayrollCalculation) Money {
	total := Yen(0)
	for _, c := range calcs {
		total = total.Add(c.TotalAmount)
	}
	return total
}
