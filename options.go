package procvalidity

import (
	"runtime"

	"github.com/rs/zerolog"
)

// Option configures a Reconciler.
type Option func(*Options)

// Options holds all configuration for a Reconciler.
type Options struct {
	// Logger receives stage diagnostics; it is attached to the context
	Logger zerolog.Logger

	// WorkerCount bounds batch parallelism
	WorkerCount int

	// CollectMetrics enables stage timing and counters
	CollectMetrics bool

	// Metrics, when set, is shared instead of allocating a new instance
	Metrics *Metrics

	// ReportUnclassified adds an information issue per unclassified code
	ReportUnclassified bool

	// ReportClamped adds an information issue per window cut at discharge
	ReportClamped bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Logger:             zerolog.Nop(),
		WorkerCount:        runtime.NumCPU(),
		CollectMetrics:     true,
		ReportUnclassified: true,
		ReportClamped:      false,
	}
}

// WithLogger sets the logger used by all stages.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithWorkerCount sets the number of workers for batch reconciliation.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithMetrics enables or disables metric collection.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.CollectMetrics = enable
	}
}

// WithSharedMetrics records into m, e.g. one instance exported for several reconcilers.
func WithSharedMetrics(m *Metrics) Option {
	return func(o *Options) {
		if m != nil {
			o.Metrics = m
			o.CollectMetrics = true
		}
	}
}

// WithUnclassifiedIssues toggles information issues for unclassified codes.
func WithUnclassifiedIssues(enable bool) Option {
	return func(o *Options) {
		o.ReportUnclassified = enable
	}
}

// WithClampIssues toggles information issues for windows cut at discharge.
func WithClampIssues(enable bool) Option {
	return func(o *Options) {
		o.ReportClamped = enable
	}
}

// QuietOptions disables issues and metrics; only corrected records are produced.
func QuietOptions() []Option {
	return []Option{
		WithMetrics(false),
		WithUnclassifiedIssues(false),
		WithClampIssues(false),
	}
}
