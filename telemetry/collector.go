// Package telemetry exports reconciliation metrics to Prometheus.
package telemetry

import (
	"io"
	"net/http"

	pv "github.com/gofhir/procvalidity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const namespace = "procvalidity"

// Collector reads a procvalidity.Metrics on every scrape.
type Collector struct {
	metrics *pv.Metrics

	casesTotal        *prometheus.Desc
	casesFailed       *prometheus.Desc
	proceduresTotal   *prometheus.Desc
	unclassifiedTotal *prometheus.Desc
	adjustmentsTotal  *prometheus.Desc
	nonPositiveTotal  *prometheus.Desc
	clampedTotal      *prometheus.Desc
	caseSeconds       *prometheus.Desc
	stageInvocations  *prometheus.Desc
	stageFailures     *prometheus.Desc
	stageSeconds      *prometheus.Desc
}

// NewCollector creates a collector for m.
func NewCollector(m *pv.Metrics) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		metrics:           m,
		casesTotal:        desc("cases_total", "Cases reconciled, including failures."),
		casesFailed:       desc("cases_failed_total", "Cases that ended with an error."),
		proceduresTotal:   desc("procedures_total", "Procedures classified."),
		unclassifiedTotal: desc("unclassified_total", "Procedures matching no catalog entry."),
		adjustmentsTotal:  desc("adjustments_total", "Overlapping windows shortened."),
		nonPositiveTotal:  desc("non_positive_validity_total", "Corrected records left with zero or negative validity."),
		clampedTotal:      desc("clamped_total", "Corrected windows cut at the discharge date."),
		caseSeconds:       desc("case_duration_seconds", "Case reconciliation time.", "stat"),
		stageInvocations:  desc("stage_invocations_total", "Pipeline stage runs.", "stage"),
		stageFailures:     desc("stage_failures_total", "Pipeline stage runs that failed.", "stage"),
		stageSeconds:      desc("stage_seconds_total", "Time spent in a pipeline stage.", "stage"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.casesTotal
	ch <- c.casesFailed
	ch <- c.proceduresTotal
	ch <- c.unclassifiedTotal
	ch <- c.adjustmentsTotal
	ch <- c.nonPositiveTotal
	ch <- c.clampedTotal
	ch <- c.caseSeconds
	ch <- c.stageInvocations
	ch <- c.stageFailures
	ch <- c.stageSeconds
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.metrics
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}

	counter(c.casesTotal, m.CasesTotal())
	counter(c.casesFailed, m.CasesFailed())
	counter(c.proceduresTotal, m.ProceduresTotal())
	counter(c.unclassifiedTotal, m.UnclassifiedTotal())
	counter(c.adjustmentsTotal, m.AdjustmentsTotal())
	counter(c.nonPositiveTotal, m.NonPositiveTotal())
	counter(c.clampedTotal, m.ClampedTotal())

	ch <- prometheus.MustNewConstMetric(c.caseSeconds, prometheus.GaugeValue, m.AverageCaseTime().Seconds(), "avg")
	ch <- prometheus.MustNewConstMetric(c.caseSeconds, prometheus.GaugeValue, m.MinCaseTime().Seconds(), "min")
	ch <- prometheus.MustNewConstMetric(c.caseSeconds, prometheus.GaugeValue, m.MaxCaseTime().Seconds(), "max")

	for _, s := range m.AllStageStats() {
		counter(c.stageInvocations, s.Invocations, s.Name)
		counter(c.stageFailures, s.Failures, s.Name)
		ch <- prometheus.MustNewConstMetric(c.stageSeconds, prometheus.CounterValue, s.TotalTime.Seconds(), s.Name)
	}
}

// NewRegistry returns a registry holding only the collector for m.
func NewRegistry(m *pv.Metrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(m))
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// WriteText writes every metric of g in the text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

var _ prometheus.Collector = (*Collector)(nil)
