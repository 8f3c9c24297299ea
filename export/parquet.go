package export

import (
	"fmt"
	"io"
	"os"
	"time"

	pv "github.com/gofhir/procvalidity"
	"github.com/parquet-go/parquet-go"
)

// Row is one corrected record in the Parquet output.
type Row struct {
	CaseID                 string `parquet:"case_id"`
	RunID                  string `parquet:"run_id"`
	Code                   string `parquet:"code"`
	Qualifier              string `parquet:"qualifier"`
	ValiditySet            string `parquet:"validity_set"`
	TreatmentType          string `parquet:"treatment_type"`
	ValidityGroup          string `parquet:"validity_group"`
	PerformedOn            string `parquet:"performed_on"`
	EndsOn                 string `parquet:"ends_on"`
	ClassifiedValidityDays int32  `parquet:"classified_validity_days"`
	ValidityDays           int32  `parquet:"validity_days"`
	Clamped                bool   `parquet:"clamped"`
}

// Rows flattens the corrected records of r.
func Rows(r *pv.Result) []Row {
	rows := make([]Row, len(r.Corrected))
	for i, rec := range r.Corrected {
		rows[i] = Row{
			CaseID:                 r.CaseID,
			RunID:                  r.ID,
			Code:                   rec.Procedure.Code,
			Qualifier:              rec.Procedure.Qualifier,
			ValiditySet:            rec.ValiditySet,
			TreatmentType:          rec.TreatmentType,
			ValidityGroup:          rec.ValidityGroup,
			PerformedOn:            rec.Procedure.PerformedOn.Format(time.RFC3339),
			EndsOn:                 rec.EndsOn.Format(time.RFC3339),
			ClassifiedValidityDays: int32(rec.ClassifiedValidityDays), //nolint:gosec // validity days are small
			ValidityDays:           int32(rec.ValidityDays),           //nolint:gosec // validity days are small
			Clamped:                rec.Clamped(),
		}
	}
	return rows
}

const parquetFlushInterval = 100_000

// ParquetWriter writes corrected records to a Parquet stream.
type ParquetWriter struct {
	closer io.Closer
	writer *parquet.GenericWriter[Row]
	count  int
}

// NewParquetWriter writes Snappy-compressed Parquet to w. Close must be
// called to write the footer.
func NewParquetWriter(w io.Writer) *ParquetWriter {
	return &ParquetWriter{
		writer: parquet.NewGenericWriter[Row](w, parquet.Compression(&parquet.Snappy)),
	}
}

// CreateParquet creates filename and returns a writer that closes it.
func CreateParquet(filename string) (*ParquetWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}
	pw := NewParquetWriter(file)
	pw.closer = file
	return pw, nil
}

// Write appends the corrected records of r.
func (pw *ParquetWriter) Write(r *pv.Result) error {
	rows := Rows(r)
	if len(rows) == 0 {
		return nil
	}
	if _, err := pw.writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}

	before := pw.count / parquetFlushInterval
	pw.count += len(rows)
	if pw.count/parquetFlushInterval != before {
		if err := pw.writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush parquet row group: %w", err)
		}
	}
	return nil
}

// Close flushes the footer and closes the underlying file, if any.
func (pw *ParquetWriter) Close() error {
	if err := pw.writer.Close(); err != nil {
		if pw.closer != nil {
			pw.closer.Close()
		}
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	if pw.closer != nil {
		return pw.closer.Close()
	}
	return nil
}

// Count returns the number of rows written.
func (pw *ParquetWriter) Count() int {
	return pw.count
}
