package phase

import (
	"sort"

	pv "github.com/gofhir/procvalidity"
)

// Gap returns the whole days between the tentative end of cur's window and
// the start of next, truncated toward zero. Zero or less means the windows
// touch or overlap.
func Gap(cur, next pv.ProcedureValidity) int {
	return pv.WholeDays(next.Procedure.PerformedOn.Sub(cur.TentativeEnd()))
}

// Adjust reconciles the windows of one validity set. See AdjustGroup.
func Adjust(group []pv.ProcedureValidity) []pv.ProcedureValidity {
	out, _ := AdjustGroup(group)
	return out
}

// AdjustGroup sorts the records of one validity set by performed-on date
// (stable, ties keep input order) and shortens every window that reaches
// the start of its successor by the overlap. The last record keeps its
// validity. Every returned record has its window recomputed and cut at the
// discharge date.
//
// Each record is compared with its original successor only: a shortened
// window is not re-checked against the record after next, and nothing
// propagates backward. The corrected validity is not floored, so records
// sharing a date can end with zero or negative validity.
//
// The input is not modified. The returned adjustments list every overlap
// that was reconciled.
func AdjustGroup(group []pv.ProcedureValidity) ([]pv.ProcedureValidity, []pv.Adjustment) {
	sorted := make([]pv.ProcedureValidity, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Procedure.PerformedOn.Before(sorted[j].Procedure.PerformedOn)
	})

	out := make([]pv.ProcedureValidity, 0, len(sorted))
	var adjustments []pv.Adjustment

	for i, cur := range sorted {
		if i == len(sorted)-1 {
			out = append(out, cur.WithValidityDays(cur.ValidityDays))
			break
		}

		next := sorted[i+1]
		gap := Gap(cur, next)
		if gap > 0 {
			out = append(out, cur.WithValidityDays(cur.ValidityDays))
			continue
		}

		adjusted := cur.WithValidityDays(cur.ValidityDays + gap)
		out = append(out, adjusted)
		adjustments = append(adjustments, pv.Adjustment{
			Code:        cur.Procedure.Code,
			PerformedOn: cur.Procedure.PerformedOn,
			ValiditySet: cur.ValiditySet,
			NextCode:    next.Procedure.Code,
			GapDays:     gap,
			DaysBefore:  cur.ValidityDays,
			DaysAfter:   adjusted.ValidityDays,
			Clamped:     adjusted.Clamped(),
		})
	}
	return out, adjustments
}
