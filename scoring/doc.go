// Package scoring turns corrected validity windows into day-table scores.
//
// The reconciler only promises, per procedure, its code, performed-on date,
// corrected validity and window end. Inputs extracts exactly that, and a
// Scorer combines it with the case window, weighted code tables and a
// threshold. DaysAtOrAbove is the reference Scorer.
package scoring
