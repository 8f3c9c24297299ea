// Package phase implements the reconciliation stages.
//
//   - Classify: turns each procedure of a case into a ProcedureValidity
//   - Group: partitions records by validity set
//   - Adjust: shortens overlapping windows inside one validity set
//
// The functions are pure and never modify their input. Stage adapters for
// the pipeline package live in stages.go.
package phase
