// Package export writes reconciliation results as text, JSON or Parquet.
package export
