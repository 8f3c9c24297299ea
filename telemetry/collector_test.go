package telemetry

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pv "github.com/gofhir/procvalidity"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func sampleMetrics() *pv.Metrics {
	m := pv.NewMetrics()
	m.RecordCase(10*time.Millisecond, false)
	m.RecordCase(30*time.Millisecond, true)
	m.RecordStage("classify", time.Millisecond, false)
	m.RecordStage("adjust", 2*time.Millisecond, true)
	return m
}

func TestCollector_Lint(t *testing.T) {
	problems, err := testutil.CollectAndLint(NewCollector(sampleMetrics()))
	if err != nil {
		t.Fatalf("CollectAndLint() error = %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("lint problems = %v", problems)
	}
}

func TestCollector_Values(t *testing.T) {
	c := NewCollector(sampleMetrics())

	// 7 counters, 3 duration gauges, 3 series per stage
	if got := testutil.CollectAndCount(c); got != 7+3+2*3 {
		t.Errorf("CollectAndCount() = %d; want 16", got)
	}

	want := `
# HELP procvalidity_cases_failed_total Cases that ended with an error.
# TYPE procvalidity_cases_failed_total counter
procvalidity_cases_failed_total 1
# HELP procvalidity_cases_total Cases reconciled, including failures.
# TYPE procvalidity_cases_total counter
procvalidity_cases_total 2
# HELP procvalidity_stage_failures_total Pipeline stage runs that failed.
# TYPE procvalidity_stage_failures_total counter
procvalidity_stage_failures_total{stage="adjust"} 1
procvalidity_stage_failures_total{stage="classify"} 0
`
	err := testutil.CollectAndCompare(c, strings.NewReader(want),
		"procvalidity_cases_total", "procvalidity_cases_failed_total", "procvalidity_stage_failures_total")
	if err != nil {
		t.Error(err)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, NewRegistry(sampleMetrics())); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if !strings.Contains(buf.String(), "procvalidity_cases_total 2") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(NewRegistry(sampleMetrics())).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `procvalidity_stage_invocations_total{stage="classify"} 1`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
