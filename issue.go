package procvalidity

// IssueSeverity represents the severity of a reconciliation issue.
type IssueSeverity string

const (
	// SeverityError marks an issue that prevented the case from being reconciled.
	SeverityError IssueSeverity = "error"
	// SeverityWarning marks a result that should be reviewed.
	SeverityWarning IssueSeverity = "warning"
	// SeverityInformation marks informational feedback.
	SeverityInformation IssueSeverity = "information"
)

// IssueType classifies an issue.
type IssueType string

const (
	// IssueTypeMissingDate indicates a required date was absent.
	IssueTypeMissingDate IssueType = "missing-date"
	// IssueTypeUnclassified indicates a code matched no catalog entry.
	IssueTypeUnclassified IssueType = "unclassified"
	// IssueTypeNonPositiveValidity indicates adjustment left zero or negative validity.
	IssueTypeNonPositiveValidity IssueType = "non-positive-validity"
	// IssueTypeClamped indicates a window was cut back to the discharge date.
	IssueTypeClamped IssueType = "clamped"
)

// Issue is a single finding produced while reconciling a case.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Code     IssueType     `json:"code"`

	// Diagnostics contains human-readable details
	Diagnostics string `json:"diagnostics,omitempty"`

	// ProcedureCode is the code the issue refers to, if any
	ProcedureCode string `json:"procedureCode,omitempty"`

	// Stage is the pipeline stage that reported the issue
	Stage string `json:"stage,omitempty"`
}

// IsError returns true if this is an error issue.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// IsWarning returns true if this is a warning.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	at := ""
	if i.ProcedureCode != "" {
		at = " (" + i.ProcedureCode + ")"
	}
	return string(i.Severity) + ": " + i.Diagnostics + at
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder.
func NewIssue(severity IssueSeverity, code IssueType) *IssueBuilder {
	return &IssueBuilder{issue: Issue{Severity: severity, Code: code}}
}

// Warning creates a warning issue.
func Warning(code IssueType) *IssueBuilder {
	return NewIssue(SeverityWarning, code)
}

// Info creates an informational issue.
func Info(code IssueType) *IssueBuilder {
	return NewIssue(SeverityInformation, code)
}

// Diagnostics sets the diagnostic message.
func (b *IssueBuilder) Diagnostics(msg string) *IssueBuilder {
	b.issue.Diagnostics = msg
	return b
}

// For sets the procedure code.
func (b *IssueBuilder) For(code string) *IssueBuilder {
	b.issue.ProcedureCode = code
	return b
}

// Stage sets the reporting stage.
func (b *IssueBuilder) Stage(stage string) *IssueBuilder {
	b.issue.Stage = stage
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}
