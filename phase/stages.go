package phase

import (
	"context"
	"fmt"
	"time"

	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/pipeline"
)

// Stage names as reported in metrics, issues and errors.
const (
	StageClassify = "classify"
	StageGroup    = "group"
	StageAdjust   = "adjust"
)

// ClassifyStage fills pipeline.Context.Classified. When reportUnclassified is
// set, every procedure matching no catalog entry adds an information issue.
func ClassifyStage(classifier pv.Classifier, reportUnclassified bool) pipeline.Stage {
	return pipeline.NewStageFunc(StageClassify, func(ctx context.Context, pctx *pipeline.Context) error {
		var visit func(pv.Procedure)
		if reportUnclassified {
			visit = func(p pv.Procedure) {
				pctx.AddIssue(pv.Info(pv.IssueTypeUnclassified).
					Diagnostics(fmt.Sprintf("code %q is in no validity set; default validity of %d day applies",
						p.Code, pv.Unclassified.DefaultValidityDays)).
					For(p.Code).
					Stage(StageClassify).
					Build())
			}
		}

		records, err := classify(ctx, classifier, pctx.Case, visit)
		if err != nil {
			return err
		}
		pctx.Classified = records
		return nil
	})
}

// GroupStage fills pipeline.Context.Groups from the classified records.
func GroupStage() pipeline.Stage {
	return pipeline.NewStageFunc(StageGroup, func(_ context.Context, pctx *pipeline.Context) error {
		pctx.Groups = Group(pctx.Classified)
		return nil
	})
}

// AdjustStage reconciles every group in set-name order and fills
// pipeline.Context.Corrected and Adjustments.
//
// A corrected validity of zero or less adds a warning. When reportClamped is
// set, every corrected window cut at the discharge date adds an information
// issue.
func AdjustStage(reportClamped bool) pipeline.Stage {
	return pipeline.NewStageFunc(StageAdjust, func(_ context.Context, pctx *pipeline.Context) error {
		corrected := make([]pv.ProcedureValidity, 0, len(pctx.Classified))
		for _, name := range SetNames(pctx.Groups) {
			out, adjustments := AdjustGroup(pctx.Groups[name])
			corrected = append(corrected, out...)
			pctx.Adjustments = append(pctx.Adjustments, adjustments...)
		}
		pctx.Corrected = corrected

		for _, rec := range corrected {
			if rec.ValidityDays <= 0 {
				pctx.AddIssue(pv.Warning(pv.IssueTypeNonPositiveValidity).
					Diagnostics(fmt.Sprintf("validity of %s on %s reduced to %d days",
						rec.Procedure.Code, rec.Procedure.PerformedOn.Format(time.DateOnly), rec.ValidityDays)).
					For(rec.Procedure.Code).
					Stage(StageAdjust).
					Build())
			}
			if reportClamped && rec.Clamped() {
				pctx.AddIssue(pv.Info(pv.IssueTypeClamped).
					Diagnostics(fmt.Sprintf("window of %s ends at discharge %s",
						rec.Procedure.Code, rec.DischargeDate.Format(time.DateOnly))).
					For(rec.Procedure.Code).
					Stage(StageAdjust).
					Build())
			}
		}
		return nil
	})
}
