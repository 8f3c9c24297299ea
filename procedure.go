package procvalidity

import "time"

// Day is the unit of validity windows.
const Day = 24 * time.Hour

// Procedure is a single performed medical intervention.
// It is never modified after creation and is shared by value between the
// classified and corrected views of a case.
type Procedure struct {
	// Code is the procedure code (e.g., an OPS code such as "3-333")
	Code string `json:"code"`

	// Qualifier is a free-form flag attached to the code, may be empty
	Qualifier string `json:"qualifier,omitempty"`

	// PerformedOn is when the procedure was performed; the zero value means unknown
	PerformedOn time.Time `json:"performedOn"`
}

// HasDate reports whether the performed-on date is known.
func (p Procedure) HasDate() bool {
	return !p.PerformedOn.IsZero()
}

// Case is one hospital treatment episode.
type Case struct {
	// ID identifies the case in results and exports. Optional.
	ID string `json:"id,omitempty"`

	// Procedures in the order they were recorded
	Procedures []Procedure `json:"procedures"`

	AdmissionDate time.Time `json:"admissionDate"`
	DischargeDate time.Time `json:"dischargeDate"`
}

// Validate checks that both case dates are set.
func (c *Case) Validate() error {
	if c.AdmissionDate.IsZero() {
		return &MissingDateError{Field: FieldAdmission}
	}
	if c.DischargeDate.IsZero() {
		return &MissingDateError{Field: FieldDischarge}
	}
	return nil
}

// AddDays returns t shifted by n whole days of 24 hours.
func AddDays(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * Day)
}

// WholeDays returns the number of whole days in d, truncated toward zero.
func WholeDays(d time.Duration) int {
	return int(d / Day)
}
