package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofhir/fhirpath"
	pv "github.com/gofhir/procvalidity"
)

// DefaultCodePath selects the procedure code.
const DefaultCodePath = "code.coding.code"

// ErrNotBundle is returned when the input is not a FHIR Bundle.
var ErrNotBundle = errors.New("resource is not a Bundle")

// Option configures a Loader.
type Option func(*options)

type options struct {
	codePath      string
	qualifierPath string
	caseID        string
}

// WithCodePath sets the FHIRPath expression selecting the procedure code.
// The first result is used.
func WithCodePath(expr string) Option {
	return func(o *options) {
		if expr != "" {
			o.codePath = expr
		}
	}
}

// WithQualifierPath sets the FHIRPath expression selecting the qualifier.
func WithQualifierPath(expr string) Option {
	return func(o *options) {
		o.qualifierPath = expr
	}
}

// WithCaseID overrides the case id taken from the Encounter or Bundle.
func WithCaseID(id string) Option {
	return func(o *options) {
		o.caseID = id
	}
}

// Loader reads cases from FHIR Bundles. It is safe for concurrent use.
type Loader struct {
	code      *fhirpath.Expression
	qualifier *fhirpath.Expression
	caseID    string
}

// New compiles the configured FHIRPath expressions.
func New(opts ...Option) (*Loader, error) {
	o := &options{codePath: DefaultCodePath}
	for _, opt := range opts {
		opt(o)
	}

	code, err := fhirpath.Compile(o.codePath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile code path '%s': %w", o.codePath, err)
	}

	l := &Loader{code: code, caseID: o.caseID}
	if o.qualifierPath != "" {
		l.qualifier, err = fhirpath.Compile(o.qualifierPath)
		if err != nil {
			return nil, fmt.Errorf("failed to compile qualifier path '%s': %w", o.qualifierPath, err)
		}
	}
	return l, nil
}

// CaseFromBundle is a convenience wrapper around New and Loader.CaseFromBundle.
func CaseFromBundle(data []byte, opts ...Option) (*pv.Case, error) {
	l, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return l.CaseFromBundle(data)
}

// LoadFile reads a Bundle file into a case.
func LoadFile(path string, opts ...Option) (*pv.Case, error) {
	l, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return l.LoadFile(path)
}

// LoadFile reads a Bundle file into a case.
func (l *Loader) LoadFile(path string) (*pv.Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c, err := l.CaseFromBundle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

type bundle struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
	Entry        []struct {
		Resource json.RawMessage `json:"resource"`
	} `json:"entry"`
}

type header struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
	Status       string `json:"status"`
}

type period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type encounter struct {
	Period *period `json:"period"`
}

type procedure struct {
	PerformedDateTime string  `json:"performedDateTime"`
	PerformedPeriod   *period `json:"performedPeriod"`
}

// CaseFromBundle builds a case from a FHIR Bundle.
func (l *Loader) CaseFromBundle(data []byte) (*pv.Case, error) {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if b.ResourceType != "Bundle" {
		return nil, fmt.Errorf("%w: got %q", ErrNotBundle, b.ResourceType)
	}

	c := &pv.Case{ID: b.ID}
	seenEncounter := false

	for i, entry := range b.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		var h header
		if err := json.Unmarshal(entry.Resource, &h); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		switch h.ResourceType {
		case "Encounter":
			if seenEncounter {
				continue
			}
			seenEncounter = true
			if err := l.readEncounter(entry.Resource, c); err != nil {
				return nil, fmt.Errorf("entry %d (Encounter/%s): %w", i, h.ID, err)
			}
			if h.ID != "" {
				c.ID = h.ID
			}
		case "Procedure":
			if h.Status == "entered-in-error" || h.Status == "not-done" {
				continue
			}
			p, err := l.readProcedure(entry.Resource)
			if err != nil {
				return nil, fmt.Errorf("entry %d (Procedure/%s): %w", i, h.ID, err)
			}
			c.Procedures = append(c.Procedures, p)
		}
	}

	if l.caseID != "" {
		c.ID = l.caseID
	}
	return c, nil
}

func (l *Loader) readEncounter(raw json.RawMessage, c *pv.Case) error {
	var enc encounter
	if err := json.Unmarshal(raw, &enc); err != nil {
		return err
	}
	if enc.Period == nil {
		return nil
	}

	var err error
	if c.AdmissionDate, err = ParseDate(enc.Period.Start); err != nil {
		return fmt.Errorf("period.start: %w", err)
	}
	if c.DischargeDate, err = ParseDate(enc.Period.End); err != nil {
		return fmt.Errorf("period.end: %w", err)
	}
	return nil
}

func (l *Loader) readProcedure(raw json.RawMessage) (pv.Procedure, error) {
	var p procedure
	if err := json.Unmarshal(raw, &p); err != nil {
		return pv.Procedure{}, err
	}

	code, err := first(l.code, raw)
	if err != nil {
		return pv.Procedure{}, fmt.Errorf("code: %w", err)
	}
	if code == "" {
		return pv.Procedure{}, errors.New("no procedure code")
	}
	out := pv.Procedure{Code: code}

	if l.qualifier != nil {
		if out.Qualifier, err = first(l.qualifier, raw); err != nil {
			return pv.Procedure{}, fmt.Errorf("qualifier: %w", err)
		}
	}

	performed := p.PerformedDateTime
	if performed == "" && p.PerformedPeriod != nil {
		performed = p.PerformedPeriod.Start
	}
	if out.PerformedOn, err = ParseDate(performed); err != nil {
		return pv.Procedure{}, fmt.Errorf("performed: %w", err)
	}
	return out, nil
}

// first evaluates expr and returns its first result as a string.
func first(expr *fhirpath.Expression, resource []byte) (string, error) {
	result, err := expr.Evaluate(resource)
	if err != nil {
		return "", err
	}
	if result.Empty() {
		return "", nil
	}
	return strings.Trim(fmt.Sprint(result[0]), `'"`), nil
}
