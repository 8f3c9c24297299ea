package catalog

import pv "github.com/gofhir/procvalidity"

// ReferenceVersion labels the built-in reference tables.
const ReferenceVersion = "reference"

// Reference returns the built-in reference classification: two treatment
// types sharing the TE_Codes set, and the Therapieart set. All entries are
// valid for seven days.
func Reference() *Catalog {
	return MustNew(ReferenceVersion,
		pv.NewClassificationEntry(7, "TE_Codes", "Ohne_TE", "A", "3-334", "4-443", "4-444"),
		pv.NewClassificationEntry(7, "TE_Codes", "Mit_TE", "B", "3-333"),
		pv.NewClassificationEntry(7, "Therapieart", "Blablub", "C", "3-345", "4-441", "4-449"),
	)
}
