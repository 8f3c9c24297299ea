package procvalidity

import (
	"sort"
	"time"
)

// Adjustment records one overlap decision between a procedure and the next
// procedure of the same validity set.
type Adjustment struct {
	Code        string    `json:"code"`
	PerformedOn time.Time `json:"performedOn"`
	ValiditySet string    `json:"validitySet"`

	// NextCode is the code of the following procedure in the set
	NextCode string `json:"nextCode"`

	// GapDays is the whole-day distance from the tentative window end to the
	// next procedure's start; zero or negative means the windows touch or overlap
	GapDays int `json:"gapDays"`

	DaysBefore int  `json:"daysBefore"`
	DaysAfter  int  `json:"daysAfter"`
	Clamped    bool `json:"clamped"`
}

// Result contains the outcome of reconciling one case.
type Result struct {
	// ID identifies this reconciliation run
	ID string `json:"id"`

	// CaseID is copied from the case
	CaseID string `json:"caseId,omitempty"`

	AdmissionDate time.Time `json:"admissionDate"`
	DischargeDate time.Time `json:"dischargeDate"`

	// Classified holds the records before adjustment, in case order
	Classified []ProcedureValidity `json:"classified"`

	// Corrected holds the adjusted records, grouped by validity set
	Corrected []ProcedureValidity `json:"corrected"`

	// Adjustments lists every overlap that was reconciled
	Adjustments []Adjustment `json:"adjustments,omitempty"`

	Issues []Issue `json:"issues,omitempty"`

	Duration time.Duration `json:"duration"`
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{
		Issues: make([]Issue, 0, 4),
	}
}

// AddIssue appends an issue.
func (r *Result) AddIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// AddIssues appends several issues.
func (r *Result) AddIssues(issues []Issue) {
	r.Issues = append(r.Issues, issues...)
}

// HasWarnings returns true if there are any warning issues.
func (r *Result) HasWarnings() bool {
	for _, issue := range r.Issues {
		if issue.IsWarning() {
			return true
		}
	}
	return false
}

// Warnings returns all warning issues.
func (r *Result) Warnings() []Issue {
	var warnings []Issue
	for _, issue := range r.Issues {
		if issue.IsWarning() {
			warnings = append(warnings, issue)
		}
	}
	return warnings
}

// Changed returns the corrected records whose validity differs from the
// classified one.
func (r *Result) Changed() []ProcedureValidity {
	var out []ProcedureValidity
	for _, rec := range r.Corrected {
		if rec.Adjusted() {
			out = append(out, rec)
		}
	}
	return out
}

// BySet returns the corrected records keyed by validity set.
func (r *Result) BySet() map[string][]ProcedureValidity {
	out := make(map[string][]ProcedureValidity)
	for _, rec := range r.Corrected {
		out[rec.ValiditySet] = append(out[rec.ValiditySet], rec)
	}
	return out
}

// Find returns the corrected records for code ordered by performed date.
func (r *Result) Find(code string) []ProcedureValidity {
	var out []ProcedureValidity
	for _, rec := range r.Corrected {
		if rec.Procedure.Code == code {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Procedure.PerformedOn.Before(out[j].Procedure.PerformedOn)
	})
	return out
}

// Before returns the classified record matching the corrected one.
func (r *Result) Before(corrected ProcedureValidity) (ProcedureValidity, bool) {
	key := corrected.Key()
	for _, rec := range r.Classified {
		if rec.Key() == key {
			return rec, true
		}
	}
	return ProcedureValidity{}, false
}
