package procvalidity

import "sort"

// ClassificationEntry assigns a default validity and grouping tags to a set
// of procedure codes.
type ClassificationEntry struct {
	// DefaultValidityDays is the validity of a member code before adjustment
	DefaultValidityDays int `json:"defaultValidityDays"`

	// ValiditySet groups codes whose validity windows may not overlap
	ValiditySet string `json:"validitySet"`

	// TreatmentType and ValidityGroup are descriptive tags carried into results
	TreatmentType string `json:"treatmentType"`
	ValidityGroup string `json:"validityGroup"`

	codes map[string]struct{}
}

// Unclassified is returned for codes that no catalog entry contains.
var Unclassified = ClassificationEntry{DefaultValidityDays: 1}

// NewClassificationEntry creates an entry containing the given member codes.
func NewClassificationEntry(days int, validitySet, treatmentType, validityGroup string, codes ...string) ClassificationEntry {
	e := ClassificationEntry{
		DefaultValidityDays: days,
		ValiditySet:         validitySet,
		TreatmentType:       treatmentType,
		ValidityGroup:       validityGroup,
		codes:               make(map[string]struct{}, len(codes)),
	}
	for _, c := range codes {
		e.codes[c] = struct{}{}
	}
	return e
}

// Contains reports whether code is a member of the entry.
func (e ClassificationEntry) Contains(code string) bool {
	_, ok := e.codes[code]
	return ok
}

// Codes returns the member codes in sorted order.
func (e ClassificationEntry) Codes() []string {
	out := make([]string, 0, len(e.codes))
	for c := range e.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of member codes.
func (e ClassificationEntry) Len() int {
	return len(e.codes)
}

// IsUnclassified reports whether e is the Unclassified sentinel.
func (e ClassificationEntry) IsUnclassified() bool {
	return len(e.codes) == 0 && e.ValiditySet == "" && e.DefaultValidityDays == Unclassified.DefaultValidityDays
}

// Classifier looks up the classification of a procedure code.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(code string) ClassificationEntry
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(code string) ClassificationEntry

// Classify calls f(code).
func (f ClassifierFunc) Classify(code string) ClassificationEntry {
	return f(code)
}
