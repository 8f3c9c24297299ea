package loader

import (
	"fmt"
	"time"
)

// FHIR date and dateTime layouts, longest first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
	"2006-01",
	"2006",
}

// ParseDate parses a FHIR date or dateTime in any of its precisions.
// Values without an offset are read as UTC; the empty string yields the
// zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid FHIR date %q", s)
}
