// Package engine provides the procedure validity reconciler.
package engine

import (
	"context"
	"errors"
	"time"

	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/phase"
	"github.com/gofhir/procvalidity/pipeline"
	"github.com/gofhir/procvalidity/worker"
	"github.com/google/uuid"
)

// ErrNoClassifier is returned by New when no classifier is given.
var ErrNoClassifier = errors.New("engine: classifier is required")

// Reconciler classifies the procedures of a case and corrects overlapping
// validity windows. It is safe for concurrent use.
type Reconciler struct {
	classifier pv.Classifier
	options    *pv.Options
	pipe       *pipeline.Pipeline
	metrics    *pv.Metrics
}

// New creates a Reconciler that classifies with the given catalog.
func New(classifier pv.Classifier, opts ...pv.Option) (*Reconciler, error) {
	if classifier == nil {
		return nil, ErrNoClassifier
	}

	options := pv.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	metrics := options.Metrics
	if metrics == nil {
		metrics = pv.NewMetrics()
	}

	r := &Reconciler{
		classifier: classifier,
		options:    options,
		metrics:    metrics,
	}
	r.buildPipeline()
	return r, nil
}

// buildPipeline registers the classify, group and adjust stages.
func (r *Reconciler) buildPipeline() {
	r.pipe = pipeline.NewPipeline(&pipeline.Options{
		CollectMetrics: r.options.CollectMetrics,
		Metrics:        r.metrics,
	})

	r.pipe.Register(phase.ClassifyStage(r.classifier, r.options.ReportUnclassified), pipeline.PriorityClassify)
	r.pipe.Register(phase.GroupStage(), pipeline.PriorityGroup)
	r.pipe.Register(phase.AdjustStage(r.options.ReportClamped), pipeline.PriorityAdjust)
}

// Reconcile runs the pipeline on c. The case itself is not modified.
//
// The result carries both the classified and the corrected records. A
// missing admission, discharge or performed-on date fails the case with a
// *procvalidity.MissingDateError.
func (r *Reconciler) Reconcile(ctx context.Context, c *pv.Case) (*pv.Result, error) {
	start := time.Now()
	if c == nil {
		return nil, errors.New("engine: nil case")
	}

	runID := uuid.NewString()
	logger := r.options.Logger.With().Str("run", runID).Str("case", c.ID).Logger()
	ctx = logger.WithContext(ctx)

	if err := c.Validate(); err != nil {
		r.record(time.Since(start), nil)
		logger.Debug().Err(err).Msg("case rejected")
		return nil, err
	}

	pctx := pipeline.NewContext(c)
	if err := r.pipe.Execute(ctx, pctx); err != nil {
		r.record(time.Since(start), nil)
		logger.Debug().Err(err).Msg("reconciliation failed")
		return nil, unwrapStage(err)
	}

	result := pv.NewResult()
	result.ID = runID
	pctx.Result(result)
	if result.CaseID == "" {
		result.CaseID = uuid.NewString()
	}
	result.Duration = time.Since(start)

	r.record(result.Duration, result)
	logger.Debug().
		Int("procedures", len(result.Classified)).
		Int("adjustments", len(result.Adjustments)).
		Int("issues", len(result.Issues)).
		Dur("elapsed", result.Duration).
		Msg("case reconciled")
	return result, nil
}

// ReconcileBatch reconciles many cases on Options.WorkerCount goroutines.
// Results are in input order and one failing case does not stop the others.
func (r *Reconciler) ReconcileBatch(ctx context.Context, cases []*pv.Case) *worker.BatchResult {
	return worker.NewBatch(r.Reconcile, r.options.WorkerCount).Run(ctx, cases)
}

func (r *Reconciler) record(elapsed time.Duration, result *pv.Result) {
	if !r.options.CollectMetrics {
		return
	}
	r.metrics.RecordCase(elapsed, result == nil)
	r.metrics.RecordResult(result)
}

// unwrapStage returns the date error of a failed stage as is, so callers see
// the same error whether the engine or a stage detected it.
func unwrapStage(err error) error {
	var mde *pv.MissingDateError
	if errors.As(err, &mde) {
		return mde
	}
	return err
}

// Classifier returns the catalog used for classification.
func (r *Reconciler) Classifier() pv.Classifier {
	return r.classifier
}

// Metrics returns the reconciler's metrics.
func (r *Reconciler) Metrics() *pv.Metrics {
	return r.metrics
}

// Options returns the reconciler's options.
func (r *Reconciler) Options() *pv.Options {
	return r.options
}

// Stages returns the pipeline stage names in execution order.
func (r *Reconciler) Stages() []string {
	return r.pipe.Stages()
}
