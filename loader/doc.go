// Package loader builds cases from FHIR R4 resources.
//
// A case is read from a Bundle: the first Encounter supplies the admission
// and discharge dates from period.start and period.end, and every Procedure
// entry yields one procedure. Codes and qualifiers are extracted with
// FHIRPath so callers can point at a different coding or extension:
//
//	l, err := loader.New(loader.WithQualifierPath("extension.where(url = 'http://example.org/q').valueString"))
//	c, err := l.CaseFromBundle(data)
//
// Procedures with entered-in-error or not-done status are skipped. A
// procedure without a performed date is kept with a zero date, so the
// reconciler reports the missing date instead of the loader guessing one.
package loader
