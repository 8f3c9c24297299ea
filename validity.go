package procvalidity

import (
	"fmt"
	"time"
)

// ProcedureValidity is a procedure together with its validity window.
//
// Values are never modified once built: WithValidityDays returns a new value,
// so the classified and corrected sequences of a case can be compared side
// by side.
type ProcedureValidity struct {
	Procedure Procedure `json:"procedure"`

	// ValidityDays is the current (corrected) validity
	ValidityDays int `json:"validityDays"`

	// ClassifiedValidityDays is the validity assigned by the catalog
	ClassifiedValidityDays int `json:"classifiedValidityDays"`

	ValiditySet   string `json:"validitySet"`
	TreatmentType string `json:"treatmentType"`
	ValidityGroup string `json:"validityGroup"`

	// EndsOn is PerformedOn + ValidityDays, never later than DischargeDate
	EndsOn time.Time `json:"endsOn"`

	// DischargeDate is the upper bound copied from the case
	DischargeDate time.Time `json:"dischargeDate"`
}

// NewProcedureValidity builds the classified record for p.
// It fails with a MissingDateError when the performed-on date is unknown.
func NewProcedureValidity(p Procedure, entry ClassificationEntry, discharge time.Time) (ProcedureValidity, error) {
	if !p.HasDate() {
		return ProcedureValidity{}, &MissingDateError{Field: FieldPerformed, Code: p.Code}
	}

	pv := ProcedureValidity{
		Procedure:              p,
		ValidityDays:           entry.DefaultValidityDays,
		ClassifiedValidityDays: entry.DefaultValidityDays,
		ValiditySet:            entry.ValiditySet,
		TreatmentType:          entry.TreatmentType,
		ValidityGroup:          entry.ValidityGroup,
		DischargeDate:          discharge,
	}
	pv.EndsOn = pv.windowEnd(pv.ValidityDays)
	return pv, nil
}

// WithValidityDays returns a copy of pv with the given validity and the
// window end recomputed from the performed-on date.
func (pv ProcedureValidity) WithValidityDays(days int) ProcedureValidity {
	pv.ValidityDays = days
	pv.EndsOn = pv.windowEnd(days)
	return pv
}

// TentativeEnd is PerformedOn + ValidityDays without the discharge clamp.
func (pv ProcedureValidity) TentativeEnd() time.Time {
	return AddDays(pv.Procedure.PerformedOn, pv.ValidityDays)
}

// Clamped reports whether EndsOn was cut back to the discharge date.
func (pv ProcedureValidity) Clamped() bool {
	return !pv.DischargeDate.IsZero() && pv.TentativeEnd().After(pv.DischargeDate)
}

// Adjusted reports whether the validity differs from the classified one.
func (pv ProcedureValidity) Adjusted() bool {
	return pv.ValidityDays != pv.ClassifiedValidityDays
}

// Key identifies the record by code and performed-on date.
func (pv ProcedureValidity) Key() string {
	return pv.Procedure.Code + "@" + pv.Procedure.PerformedOn.Format(time.RFC3339)
}

// String returns a short human-readable form.
func (pv ProcedureValidity) String() string {
	return fmt.Sprintf("%s %s +%dd -> %s", pv.Procedure.Code,
		pv.Procedure.PerformedOn.Format(time.DateOnly), pv.ValidityDays, pv.EndsOn.Format(time.DateOnly))
}

func (pv ProcedureValidity) windowEnd(days int) time.Time {
	end := AddDays(pv.Procedure.PerformedOn, days)
	if !pv.DischargeDate.IsZero() && end.After(pv.DischargeDate) {
		return pv.DischargeDate
	}
	return end
}
