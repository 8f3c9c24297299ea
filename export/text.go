package export

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	pv "github.com/gofhir/procvalidity"
)

// WriteText prints the corrected records of r as an aligned table, followed
// by its issues.
func WriteText(w io.Writer, r *pv.Result) error {
	fmt.Fprintf(w, "case %s  %s - %s\n", r.CaseID,
		r.AdmissionDate.Format(time.DateOnly), r.DischargeDate.Format(time.DateOnly))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSET\tTYPE\tPERFORMED\tDAYS\tENDS\t")
	for _, rec := range r.Corrected {
		days := fmt.Sprintf("%d", rec.ValidityDays)
		if rec.Adjusted() {
			days = fmt.Sprintf("%d (was %d)", rec.ValidityDays, rec.ClassifiedValidityDays)
		}
		ends := rec.EndsOn.Format(time.DateOnly)
		if rec.Clamped() {
			ends += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", rec.Procedure.Code, orDash(rec.ValiditySet),
			orDash(rec.TreatmentType), rec.Procedure.PerformedOn.Format(time.DateOnly), days, ends)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, issue := range r.Issues {
		if _, err := fmt.Fprintf(w, "  %s\n", issue); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
