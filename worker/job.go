package worker

import (
	"time"

	pv "github.com/gofhir/procvalidity"
)

// Job is one case to reconcile.
type Job struct {
	// ID identifies the job; it defaults to the case id, then the input index
	ID string

	Case *pv.Case
}

// JobResult is the outcome of one job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Result is nil when Err is set.
	Result *pv.Result

	// Err is any error that occurred while reconciling.
	Err error

	Duration time.Duration

	ran bool
}

// BatchResult aggregates results from multiple jobs.
type BatchResult struct {
	// Results are in input order, one per job.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs that ran, including failures.
	CompletedJobs int

	// FailedJobs is the number of jobs that ended with an error.
	FailedJobs int

	TotalDuration time.Duration
}

// HasErrors returns true if any job failed.
func (br *BatchResult) HasErrors() bool {
	return br.FailedJobs > 0
}

// Errors returns the failed job results.
func (br *BatchResult) Errors() []*JobResult {
	var out []*JobResult
	for _, r := range br.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// WarningCount returns the number of warning issues across all results.
func (br *BatchResult) WarningCount() int {
	count := 0
	for _, r := range br.Results {
		if r.Result != nil {
			count += len(r.Result.Warnings())
		}
	}
	return count
}
