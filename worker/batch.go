package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	pv "github.com/gofhir/procvalidity"
)

// Func reconciles a single case.
type Func func(ctx context.Context, c *pv.Case) (*pv.Result, error)

// Batch runs a Func over many cases with bounded parallelism.
type Batch struct {
	fn      Func
	workers int
}

// NewBatch creates a batch runner. workers <= 0 means runtime.NumCPU().
func NewBatch(fn Func, workers int) *Batch {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Batch{fn: fn, workers: workers}
}

// Workers returns the parallelism bound.
func (b *Batch) Workers() int {
	return b.workers
}

// Run reconciles every case. Results are in input order.
func (b *Batch) Run(ctx context.Context, cases []*pv.Case) *BatchResult {
	jobs := make([]Job, len(cases))
	for i, c := range cases {
		jobs[i] = Job{Case: c}
	}
	return b.RunJobs(ctx, jobs)
}

// RunJobs reconciles every job. Results are in input order.
func (b *Batch) RunJobs(ctx context.Context, jobs []Job) *BatchResult {
	start := time.Now()
	results := make([]*JobResult, len(jobs))

	// small batches are not worth the goroutines
	if len(jobs) <= 2 || b.workers == 1 {
		for i, job := range jobs {
			results[i] = b.runOne(ctx, i, job)
		}
		return summarize(results, time.Since(start))
	}

	numWorkers := b.workers
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = b.runOne(ctx, i, jobs[i])
			}
		}()
	}

dispatch:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break dispatch
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	for i, r := range results {
		if r == nil {
			results[i] = &JobResult{ID: jobID(i, jobs[i]), Err: ctx.Err()}
		}
	}
	return summarize(results, time.Since(start))
}

func (b *Batch) runOne(ctx context.Context, i int, job Job) *JobResult {
	id := jobID(i, job)
	if err := ctx.Err(); err != nil {
		return &JobResult{ID: id, Err: err}
	}

	start := time.Now()
	result, err := b.fn(ctx, job.Case)
	return &JobResult{
		ID:       id,
		Result:   result,
		Err:      err,
		Duration: time.Since(start),
		ran:      true,
	}
}

func jobID(i int, job Job) string {
	switch {
	case job.ID != "":
		return job.ID
	case job.Case != nil && job.Case.ID != "":
		return job.Case.ID
	default:
		return strconv.Itoa(i)
	}
}

func summarize(results []*JobResult, elapsed time.Duration) *BatchResult {
	br := &BatchResult{
		Results:       results,
		TotalJobs:     len(results),
		TotalDuration: elapsed,
	}
	for _, r := range results {
		if r.Err != nil {
			br.FailedJobs++
		}
		if r.ran {
			br.CompletedJobs++
		}
	}
	return br
}
