// Package pipeline runs the reconciliation stages of one case in order.
package pipeline

import (
	pv "github.com/gofhir/procvalidity"
)

// Context holds all state of one case while it moves through the stages.
// Each stage reads what earlier stages left and fills in its own part.
//
// A Context belongs to a single reconciliation and is not safe for
// concurrent use.
type Context struct {
	// Case is the input; stages never modify it
	Case *pv.Case

	// Classified holds one record per procedure, in case order
	Classified []pv.ProcedureValidity

	// Groups holds the classified records keyed by validity set
	Groups map[string][]pv.ProcedureValidity

	// Corrected holds the adjusted records, concatenated by set name
	Corrected []pv.ProcedureValidity

	// Adjustments lists every overlap reconciled so far
	Adjustments []pv.Adjustment

	// Issues accumulates non-fatal findings
	Issues []pv.Issue
}

// NewContext creates a context for c.
func NewContext(c *pv.Case) *Context {
	return &Context{Case: c}
}

// AddIssue appends an issue.
func (c *Context) AddIssue(issue pv.Issue) {
	c.Issues = append(c.Issues, issue)
}

// Result copies the accumulated state into r.
func (c *Context) Result(r *pv.Result) {
	if c.Case != nil {
		r.CaseID = c.Case.ID
		r.AdmissionDate = c.Case.AdmissionDate
		r.DischargeDate = c.Case.DischargeDate
	}
	r.Classified = c.Classified
	r.Corrected = c.Corrected
	r.Adjustments = c.Adjustments
	r.AddIssues(c.Issues)
}
