package pipeline

import (
	"context"
)

// Stage is one step of the reconciliation pipeline.
//
// A stage reads from and writes to the pipeline Context. Returning an error
// aborts the pipeline; findings that should not abort go to Context.AddIssue.
type Stage interface {
	// Name returns the unique identifier for this stage.
	Name() string

	// Run performs the stage on pctx.
	Run(ctx context.Context, pctx *Context) error
}

// StageFunc is a function type that implements Stage.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, pctx *Context) error
}

// NewStageFunc creates a Stage from a function.
func NewStageFunc(name string, fn func(ctx context.Context, pctx *Context) error) Stage {
	return &StageFunc{name: name, fn: fn}
}

// Name returns the stage name.
func (s *StageFunc) Name() string {
	return s.name
}

// Run calls the wrapped function.
func (s *StageFunc) Run(ctx context.Context, pctx *Context) error {
	return s.fn(ctx, pctx)
}

// Priority orders stages; lower values run first.
type Priority int

const (
	// PriorityClassify for stages that build the classified records
	PriorityClassify Priority = 100

	// PriorityGroup for stages that partition records
	PriorityGroup Priority = 200

	// PriorityAdjust for stages that correct windows
	PriorityAdjust Priority = 500

	// PriorityLast for stages that inspect the final records
	PriorityLast Priority = 900
)
