package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	pv "github.com/gofhir/procvalidity"
	"github.com/rs/zerolog"
)

// Pipeline runs registered stages sequentially in priority order.
// Stages with equal priority run in registration order.
//
// Registration is safe for concurrent use with Execute; a running Execute
// keeps the stage list it started with.
type Pipeline struct {
	stages  []registered
	metrics *pv.Metrics
	options *Options
	mu      sync.RWMutex
}

type registered struct {
	stage    Stage
	priority Priority
	seq      int
}

// Options configures pipeline behavior.
type Options struct {
	// CollectMetrics enables per-stage timing
	CollectMetrics bool

	// Metrics, when set, receives the stage timings
	Metrics *pv.Metrics
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() *Options {
	return &Options{CollectMetrics: true}
}

// NewPipeline creates an empty pipeline.
func NewPipeline(opts *Options) *Pipeline {
	if opts == nil {
		opts = DefaultOptions()
	}
	m := opts.Metrics
	if m == nil {
		m = pv.NewMetrics()
	}
	return &Pipeline{
		stages:  make([]registered, 0, 4),
		metrics: m,
		options: opts,
	}
}

// Register adds a stage at the given priority.
func (p *Pipeline) Register(stage Stage, priority Priority) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stages = append(p.stages, registered{stage: stage, priority: priority, seq: len(p.stages)})
	sort.SliceStable(p.stages, func(i, j int) bool {
		if p.stages[i].priority != p.stages[j].priority {
			return p.stages[i].priority < p.stages[j].priority
		}
		return p.stages[i].seq < p.stages[j].seq
	})
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.stages))
	for i, r := range p.stages {
		names[i] = r.stage.Name()
	}
	return names
}

// Len returns the number of registered stages.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.stages)
}

// Execute runs every stage on pctx. It stops at the first stage error or
// when ctx is cancelled between stages; the error names the failed stage.
func (p *Pipeline) Execute(ctx context.Context, pctx *Context) error {
	p.mu.RLock()
	stages := p.stages
	p.mu.RUnlock()

	log := zerolog.Ctx(ctx)
	for _, r := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := r.stage.Name()
		start := time.Now()
		err := r.stage.Run(ctx, pctx)
		elapsed := time.Since(start)

		if p.options.CollectMetrics {
			p.metrics.RecordStage(name, elapsed, err != nil)
		}
		if err != nil {
			log.Debug().Err(err).Str("stage", name).Msg("stage failed")
			return fmt.Errorf("%s: %w", name, err)
		}
		log.Trace().Str("stage", name).Dur("elapsed", elapsed).Msg("stage done")
	}
	return nil
}

// Metrics returns the metrics receiving stage timings.
func (p *Pipeline) Metrics() *pv.Metrics {
	return p.metrics
}
