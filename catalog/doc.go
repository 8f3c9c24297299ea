// Package catalog provides the classification catalog that maps procedure
// codes to a default validity and validity-set tags.
//
// A Catalog is an ordered list of entries. Lookup tests the entries in
// order and returns the first one containing the code, so a code listed in
// several entries is classified by the earliest. Codes in no entry are
// procvalidity.Unclassified (one day, empty tags).
//
// Catalogs are immutable once built and may be shared between goroutines.
// Entries can be declared inline, taken from the reference tables
// (Reference), or built from FHIR R4 ValueSets (FromValueSet):
//
//	vs, err := catalog.LoadValueSetFile("te-codes.json")
//	entry, err := catalog.FromValueSet(catalog.Meta{
//	    ValiditySet:         "TE_Codes",
//	    DefaultValidityDays: 7,
//	}, vs)
//	cat, err := catalog.New("2024", entry)
package catalog
