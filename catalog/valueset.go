package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofhir/fhir/r4"
	pv "github.com/gofhir/procvalidity"
)

// Meta carries the classification attributes a ValueSet does not hold.
type Meta struct {
	ValiditySet         string
	TreatmentType       string
	ValidityGroup       string
	DefaultValidityDays int

	// System restricts member codes to one code system; empty accepts all
	System string
}

// FromValueSet builds an entry whose member codes are the codes of vs.
// The expansion is preferred; without one, the concepts listed in
// compose.include are used. Filters are not expanded.
func FromValueSet(meta Meta, vs *r4.ValueSet) (pv.ClassificationEntry, error) {
	if vs == nil {
		return pv.ClassificationEntry{}, fmt.Errorf("valueset is nil")
	}

	var codes []string
	if vs.Expansion != nil && len(vs.Expansion.Contains) > 0 {
		for i := range vs.Expansion.Contains {
			codes = appendContains(codes, &vs.Expansion.Contains[i], meta.System)
		}
	} else if vs.Compose != nil {
		for i := range vs.Compose.Include {
			include := &vs.Compose.Include[i]
			if !systemMatches(meta.System, include.System) {
				continue
			}
			for j := range include.Concept {
				if c := include.Concept[j].Code; c != nil {
					codes = append(codes, *c)
				}
			}
		}
	}

	if len(codes) == 0 {
		return pv.ClassificationEntry{}, fmt.Errorf("valueset %s: no codes for validity set %q", valueSetURL(vs), meta.ValiditySet)
	}

	return pv.NewClassificationEntry(meta.DefaultValidityDays, meta.ValiditySet, meta.TreatmentType, meta.ValidityGroup, codes...), nil
}

func appendContains(codes []string, contains *r4.ValueSetExpansionContains, system string) []string {
	if contains.Code != nil && systemMatches(system, contains.System) {
		codes = append(codes, *contains.Code)
	}
	for i := range contains.Contains {
		codes = appendContains(codes, &contains.Contains[i], system)
	}
	return codes
}

func systemMatches(want string, got *string) bool {
	return want == "" || (got != nil && *got == want)
}

func valueSetURL(vs *r4.ValueSet) string {
	if vs.Url == nil {
		return "(no url)"
	}
	return *vs.Url
}

// ParseValueSet decodes a ValueSet resource from JSON.
func ParseValueSet(data []byte) (*r4.ValueSet, error) {
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if probe.ResourceType != "ValueSet" {
		return nil, fmt.Errorf("unsupported resourceType: %q", probe.ResourceType)
	}

	var vs r4.ValueSet
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, fmt.Errorf("failed to parse ValueSet: %w", err)
	}
	return &vs, nil
}

// LoadValueSetFile reads a ValueSet resource from a JSON file.
func LoadValueSetFile(path string) (*r4.ValueSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read valueset: %w", err)
	}
	vs, err := ParseValueSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vs, nil
}
