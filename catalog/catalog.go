package catalog

import (
	"errors"
	"fmt"

	pv "github.com/gofhir/procvalidity"
)

// ErrInvalidEntry is returned by New for entries that cannot classify anything.
var ErrInvalidEntry = errors.New("invalid classification entry")

// Catalog is an ordered, immutable list of classification entries.
type Catalog struct {
	version string
	entries []pv.ClassificationEntry
}

// New creates a catalog from entries in priority order.
// Every entry needs a positive default validity and at least one member code.
func New(version string, entries ...pv.ClassificationEntry) (*Catalog, error) {
	for i, e := range entries {
		if e.DefaultValidityDays <= 0 {
			return nil, fmt.Errorf("%w: entry %d (%s): default validity %d", ErrInvalidEntry, i, e.ValiditySet, e.DefaultValidityDays)
		}
		if e.Len() == 0 {
			return nil, fmt.Errorf("%w: entry %d (%s): no member codes", ErrInvalidEntry, i, e.ValiditySet)
		}
	}

	c := &Catalog{
		version: version,
		entries: make([]pv.ClassificationEntry, len(entries)),
	}
	copy(c.entries, entries)
	return c, nil
}

// MustNew is like New but panics on error. Intended for static tables.
func MustNew(version string, entries ...pv.ClassificationEntry) *Catalog {
	c, err := New(version, entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify implements procvalidity.Classifier.
func (c *Catalog) Classify(code string) pv.ClassificationEntry {
	for i := range c.entries {
		if c.entries[i].Contains(code) {
			return c.entries[i]
		}
	}
	return pv.Unclassified
}

// Version returns the version label of the classification data.
func (c *Catalog) Version() string {
	return c.version
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the entries in priority order.
func (c *Catalog) Entries() []pv.ClassificationEntry {
	out := make([]pv.ClassificationEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ValiditySets returns the distinct validity sets in first-seen order.
func (c *Catalog) ValiditySets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.entries {
		if !seen[e.ValiditySet] {
			seen[e.ValiditySet] = true
			out = append(out, e.ValiditySet)
		}
	}
	return out
}

var _ pv.Classifier = (*Catalog)(nil)
