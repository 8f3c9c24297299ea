// Package procvalidity computes how long each procedure performed during a
// hospital case remains valid for downstream day-table scoring.
//
// Every procedure code is classified into a validity set with a default
// validity in days. Procedures of the same validity set must not have
// overlapping validity windows: when the window of one procedure reaches
// into the start of the next procedure of the same set, the earlier window is
// shortened. No window ever extends past the case's discharge date.
//
// # Quick Start
//
//	import (
//	    pv "github.com/gofhir/procvalidity"
//	    "github.com/gofhir/procvalidity/catalog"
//	    "github.com/gofhir/procvalidity/engine"
//	)
//
//	r, err := engine.New(catalog.Reference())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := r.Reconcile(ctx, &pv.Case{
//	    AdmissionDate: admitted,
//	    DischargeDate: discharged,
//	    Procedures:    procedures,
//	})
//	for _, rec := range result.Corrected {
//	    fmt.Println(rec.Procedure.Code, rec.ValidityDays, rec.EndsOn)
//	}
//
// # Reconciliation Stages
//
//   - Classify: look up each code in the catalog (first matching entry wins,
//     unknown codes are valid for one day)
//   - Group: partition the records by validity set
//   - Adjust: per set, sort by performed date and shorten each window so it
//     ends no later than the start of the next procedure
//
// Adjustment only ever compares a procedure with its immediate successor. A
// shortened window is not re-checked against the procedure two steps ahead,
// and shortening never propagates backward. Corrected validity may become
// zero or negative when procedures share a date.
//
// # Functional Options
//
//	r, err := engine.New(cat,
//	    pv.WithLogger(logger),
//	    pv.WithWorkerCount(8),
//	)
package procvalidity
