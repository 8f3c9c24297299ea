package procvalidity

import (
	"errors"
	"fmt"
)

// ErrMissingDate is matched by every MissingDateError via errors.Is.
var ErrMissingDate = errors.New("missing required date")

// DateField names the date a MissingDateError refers to.
type DateField string

// Date fields required by reconciliation.
const (
	FieldAdmission DateField = "admission"
	FieldDischarge DateField = "discharge"
	FieldPerformed DateField = "performedOn"
)

// MissingDateError reports a required date that is absent. It is fatal to the
// case being processed.
type MissingDateError struct {
	Field DateField

	// Code is the procedure code when Field is FieldPerformed
	Code string
}

func (e *MissingDateError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s date of procedure %q", ErrMissingDate, e.Field, e.Code)
	}
	return fmt.Sprintf("%s: case %s date", ErrMissingDate, e.Field)
}

// Is makes errors.Is(err, ErrMissingDate) succeed.
func (e *MissingDateError) Is(target error) bool {
	return target == ErrMissingDate
}
