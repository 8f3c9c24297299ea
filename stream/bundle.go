// Package stream reconciles large Bundles of cases without loading them whole.
//
// The input is a Bundle whose entries are themselves Bundles, one per case,
// as produced by bulk exports of a whole ward or billing period. Entries are
// decoded one at a time and their results are emitted in input order.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/loader"
	"github.com/gofhir/procvalidity/worker"
)

// CaseResult is the outcome for one entry of the outer Bundle.
type CaseResult struct {
	// Index is the position of the entry; -1 for errors in the outer Bundle
	Index int

	// FullURL is the fullUrl of the entry, if present
	FullURL string

	CaseID string
	Result *pv.Result

	// Err is set if the entry could not be loaded or reconciled
	Err error
}

// Reconciler streams cases through a reconcile function.
type Reconciler struct {
	loader     *loader.Loader
	reconcile  worker.Func
	bufferSize int
}

// NewReconciler creates a streaming reconciler that reads cases with l.
func NewReconciler(l *loader.Loader, fn worker.Func) *Reconciler {
	return &Reconciler{
		loader:     l,
		reconcile:  fn,
		bufferSize: 16,
	}
}

// WithBufferSize sets the result channel buffer size.
func (s *Reconciler) WithBufferSize(size int) *Reconciler {
	if size > 0 {
		s.bufferSize = size
	}
	return s
}

type entry struct {
	FullURL  string          `json:"fullUrl"`
	Resource json.RawMessage `json:"resource"`
}

// Reconcile reads the outer Bundle from r and emits one result per entry.
// The channel is closed when the input is exhausted, on a decoding error of
// the outer Bundle, or when ctx is cancelled.
func (s *Reconciler) Reconcile(ctx context.Context, r io.Reader) <-chan *CaseResult {
	results := make(chan *CaseResult, s.bufferSize)

	go func() {
		defer close(results)

		decoder := json.NewDecoder(r)
		token, err := decoder.Token()
		if err != nil {
			results <- &CaseResult{Index: -1, Err: fmt.Errorf("failed to read bundle: %w", err)}
			return
		}
		if delim, ok := token.(json.Delim); !ok || delim != '{' {
			results <- &CaseResult{Index: -1, Err: fmt.Errorf("expected object start, got %v", token)}
			return
		}

		for decoder.More() {
			if err := ctx.Err(); err != nil {
				results <- &CaseResult{Index: -1, Err: err}
				return
			}

			token, err := decoder.Token()
			if err != nil {
				results <- &CaseResult{Index: -1, Err: fmt.Errorf("failed to read field: %w", err)}
				return
			}
			fieldName, ok := token.(string)
			if !ok {
				continue
			}

			if fieldName == "entry" {
				s.processEntries(ctx, decoder, results)
				return
			}

			// Skip other fields
			var skip json.RawMessage
			if err := decoder.Decode(&skip); err != nil {
				results <- &CaseResult{Index: -1, Err: fmt.Errorf("failed to skip field %s: %w", fieldName, err)}
				return
			}
		}
	}()

	return results
}

func (s *Reconciler) processEntries(ctx context.Context, decoder *json.Decoder, results chan<- *CaseResult) {
	token, err := decoder.Token()
	if err != nil {
		results <- &CaseResult{Index: -1, Err: fmt.Errorf("failed to read entry array: %w", err)}
		return
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		results <- &CaseResult{Index: -1, Err: fmt.Errorf("expected array start, got %v", token)}
		return
	}

	for index := 0; decoder.More(); index++ {
		if err := ctx.Err(); err != nil {
			results <- &CaseResult{Index: index, Err: err}
			return
		}

		var e entry
		if err := decoder.Decode(&e); err != nil {
			// the decoder cannot resync inside a broken value
			results <- &CaseResult{Index: index, Err: fmt.Errorf("failed to decode entry %d: %w", index, err)}
			return
		}

		select {
		case results <- s.processEntry(ctx, e, index):
		case <-ctx.Done():
			return
		}
	}
}

func (s *Reconciler) processEntry(ctx context.Context, e entry, index int) *CaseResult {
	result := &CaseResult{Index: index, FullURL: e.FullURL}

	c, err := s.loader.CaseFromBundle(e.Resource)
	if err != nil {
		result.Err = fmt.Errorf("entry %d: %w", index, err)
		return result
	}
	result.CaseID = c.ID

	result.Result, result.Err = s.reconcile(ctx, c)
	return result
}

// Summary aggregates the results of a stream.
type Summary struct {
	TotalCases   int
	FailedCases  int
	WithWarnings int
	Adjustments  int

	// Errors holds every failure, including outer Bundle errors
	Errors []error
}

// Aggregate drains results into a Summary, calling visit (if not nil) for
// each result first.
func Aggregate(results <-chan *CaseResult, visit func(*CaseResult)) *Summary {
	sum := &Summary{}
	for result := range results {
		if visit != nil {
			visit(result)
		}
		if result.Err != nil {
			sum.Errors = append(sum.Errors, result.Err)
		}
		if result.Index < 0 {
			continue
		}

		sum.TotalCases++
		if result.Err != nil {
			sum.FailedCases++
			continue
		}
		if result.Result.HasWarnings() {
			sum.WithWarnings++
		}
		sum.Adjustments += len(result.Result.Adjustments)
	}
	return sum
}

// HasErrors returns true if any case or the outer Bundle failed.
func (s *Summary) HasErrors() bool {
	return len(s.Errors) > 0
}
