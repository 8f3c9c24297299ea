package phase

import (
	"context"

	pv "github.com/gofhir/procvalidity"
	"github.com/rs/zerolog"
)

// Classify builds one ProcedureValidity per procedure of c, in case order.
//
// It fails with a *procvalidity.MissingDateError when the case discharge date
// or a procedure's performed-on date is unknown.
func Classify(ctx context.Context, classifier pv.Classifier, c *pv.Case) ([]pv.ProcedureValidity, error) {
	return classify(ctx, classifier, c, nil)
}

// classify calls visit for every procedure matching no catalog entry.
func classify(ctx context.Context, classifier pv.Classifier, c *pv.Case, unclassified func(pv.Procedure)) ([]pv.ProcedureValidity, error) {
	if c.DischargeDate.IsZero() {
		return nil, &pv.MissingDateError{Field: pv.FieldDischarge}
	}

	log := zerolog.Ctx(ctx)
	out := make([]pv.ProcedureValidity, 0, len(c.Procedures))
	for _, p := range c.Procedures {
		entry := classifier.Classify(p.Code)
		if entry.IsUnclassified() {
			log.Debug().Str("code", p.Code).Msg("procedure not in any validity set")
			if unclassified != nil {
				unclassified(p)
			}
		}

		rec, err := pv.NewProcedureValidity(p, entry, c.DischargeDate)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
