package procvalidity

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks reconciliation counters using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	casesTotal  atomic.Uint64
	casesFailed atomic.Uint64

	// Timing (stored as nanoseconds)
	caseTimeTotal atomic.Uint64
	caseTimeMin   atomic.Uint64
	caseTimeMax   atomic.Uint64

	proceduresTotal   atomic.Uint64
	unclassifiedTotal atomic.Uint64
	adjustmentsTotal  atomic.Uint64
	nonPositiveTotal  atomic.Uint64
	clampedTotal      atomic.Uint64

	// Per-stage timing
	stageTiming sync.Map // map[string]*stageMetrics
}

type stageMetrics struct {
	invocations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
	failures    atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// first recorded duration becomes the minimum
	m.caseTimeMin.Store(^uint64(0))
	return m
}

// --- Recording Methods ---

// RecordCase records a reconciled (or failed) case.
func (m *Metrics) RecordCase(duration time.Duration, failed bool) {
	m.casesTotal.Add(1)
	if failed {
		m.casesFailed.Add(1)
	}

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // durations are never negative here
	m.caseTimeTotal.Add(ns)

	for {
		old := m.caseTimeMin.Load()
		if ns >= old || m.caseTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.caseTimeMax.Load()
		if ns <= old || m.caseTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordResult adds the per-procedure counters of a finished result.
func (m *Metrics) RecordResult(r *Result) {
	if r == nil {
		return
	}
	m.proceduresTotal.Add(uint64(len(r.Classified)))
	m.adjustmentsTotal.Add(uint64(len(r.Adjustments)))
	for _, issue := range r.Issues {
		switch issue.Code {
		case IssueTypeUnclassified:
			m.unclassifiedTotal.Add(1)
		case IssueTypeNonPositiveValidity:
			m.nonPositiveTotal.Add(1)
		}
	}
	for _, rec := range r.Corrected {
		if rec.Clamped() {
			m.clampedTotal.Add(1)
		}
	}
}

// RecordStage records one execution of a pipeline stage.
func (m *Metrics) RecordStage(name string, duration time.Duration, failed bool) {
	sm := m.getOrCreateStageMetrics(name)
	sm.invocations.Add(1)
	sm.totalTime.Add(uint64(duration.Nanoseconds())) //nolint:gosec // durations are never negative here
	if failed {
		sm.failures.Add(1)
	}
}

func (m *Metrics) getOrCreateStageMetrics(name string) *stageMetrics {
	if v, ok := m.stageTiming.Load(name); ok {
		return v.(*stageMetrics)
	}
	actual, _ := m.stageTiming.LoadOrStore(name, &stageMetrics{})
	return actual.(*stageMetrics)
}

// --- Query Methods ---

// CasesTotal returns the number of cases processed.
func (m *Metrics) CasesTotal() uint64 { return m.casesTotal.Load() }

// CasesFailed returns the number of cases that ended with an error.
func (m *Metrics) CasesFailed() uint64 { return m.casesFailed.Load() }

// ProceduresTotal returns the number of classified procedures.
func (m *Metrics) ProceduresTotal() uint64 { return m.proceduresTotal.Load() }

// UnclassifiedTotal returns the number of procedures no catalog entry matched.
func (m *Metrics) UnclassifiedTotal() uint64 { return m.unclassifiedTotal.Load() }

// AdjustmentsTotal returns the number of reconciled overlaps.
func (m *Metrics) AdjustmentsTotal() uint64 { return m.adjustmentsTotal.Load() }

// NonPositiveTotal returns the number of records left with validity <= 0.
func (m *Metrics) NonPositiveTotal() uint64 { return m.nonPositiveTotal.Load() }

// ClampedTotal returns the number of windows cut back to the discharge date.
func (m *Metrics) ClampedTotal() uint64 { return m.clampedTotal.Load() }

// AverageCaseTime returns the average reconciliation duration.
func (m *Metrics) AverageCaseTime() time.Duration {
	total := m.casesTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.caseTimeTotal.Load() / total) //nolint:gosec // nanoseconds within int64 range
}

// MinCaseTime returns the shortest reconciliation duration.
func (m *Metrics) MinCaseTime() time.Duration {
	v := m.caseTimeMin.Load()
	if v == ^uint64(0) {
		return 0
	}
	return time.Duration(v) //nolint:gosec // nanoseconds within int64 range
}

// MaxCaseTime returns the longest reconciliation duration.
func (m *Metrics) MaxCaseTime() time.Duration {
	return time.Duration(m.caseTimeMax.Load()) //nolint:gosec // nanoseconds within int64 range
}

// StageStats contains statistics for one pipeline stage.
type StageStats struct {
	Name        string        `json:"name"`
	Invocations uint64        `json:"invocations"`
	Failures    uint64        `json:"failures"`
	TotalTime   time.Duration `json:"total_time"`
	AvgTime     time.Duration `json:"avg_time"`
}

// StageStats returns statistics for a specific stage.
func (m *Metrics) StageStats(name string) (StageStats, bool) {
	v, ok := m.stageTiming.Load(name)
	if !ok {
		return StageStats{Name: name}, false
	}
	return v.(*stageMetrics).stats(name), true
}

// AllStageStats returns statistics for all stages sorted by name.
func (m *Metrics) AllStageStats() []StageStats {
	var stats []StageStats
	m.stageTiming.Range(func(key, value any) bool {
		stats = append(stats, value.(*stageMetrics).stats(key.(string)))
		return true
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

func (sm *stageMetrics) stats(name string) StageStats {
	invocations := sm.invocations.Load()
	total := sm.totalTime.Load()
	var avg time.Duration
	if invocations > 0 {
		avg = time.Duration(total / invocations) //nolint:gosec // nanoseconds within int64 range
	}
	return StageStats{
		Name:        name,
		Invocations: invocations,
		Failures:    sm.failures.Load(),
		TotalTime:   time.Duration(total), //nolint:gosec // nanoseconds within int64 range
		AvgTime:     avg,
	}
}

// --- Export Methods ---

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	CasesTotal  uint64 `json:"cases_total"`
	CasesFailed uint64 `json:"cases_failed"`

	AvgCaseTimeNs uint64 `json:"avg_case_time_ns"`
	MinCaseTimeNs uint64 `json:"min_case_time_ns"`
	MaxCaseTimeNs uint64 `json:"max_case_time_ns"`

	ProceduresTotal   uint64 `json:"procedures_total"`
	UnclassifiedTotal uint64 `json:"unclassified_total"`
	AdjustmentsTotal  uint64 `json:"adjustments_total"`
	NonPositiveTotal  uint64 `json:"non_positive_total"`
	ClampedTotal      uint64 `json:"clamped_total"`

	Stages []StageStats `json:"stages,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Timestamp:         time.Now(),
		CasesTotal:        m.casesTotal.Load(),
		CasesFailed:       m.casesFailed.Load(),
		AvgCaseTimeNs:     uint64(m.AverageCaseTime()),
		MinCaseTimeNs:     uint64(m.MinCaseTime()),
		MaxCaseTimeNs:     m.caseTimeMax.Load(),
		ProceduresTotal:   m.proceduresTotal.Load(),
		UnclassifiedTotal: m.unclassifiedTotal.Load(),
		AdjustmentsTotal:  m.adjustmentsTotal.Load(),
		NonPositiveTotal:  m.nonPositiveTotal.Load(),
		ClampedTotal:      m.clampedTotal.Load(),
		Stages:            m.AllStageStats(),
	}
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.casesTotal.Store(0)
	m.casesFailed.Store(0)
	m.caseTimeTotal.Store(0)
	m.caseTimeMin.Store(^uint64(0))
	m.caseTimeMax.Store(0)
	m.proceduresTotal.Store(0)
	m.unclassifiedTotal.Store(0)
	m.adjustmentsTotal.Store(0)
	m.nonPositiveTotal.Store(0)
	m.clampedTotal.Store(0)
	m.stageTiming.Range(func(key, _ any) bool {
		m.stageTiming.Delete(key)
		return true
	})
}
