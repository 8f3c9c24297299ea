package stream

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/catalog"
	"github.com/gofhir/procvalidity/engine"
	"github.com/gofhir/procvalidity/loader"
)

const noDischarge = `{"resourceType":"Bundle","entry":[
	{"resource":{"resourceType":"Encounter","id":"open","period":{"start":"2020-12-24"}}},
	{"resource":{"resourceType":"Procedure","code":{"coding":[{"code":"3-333"}]},"performedDateTime":"2020-12-24"}}
]}`

func referenceBundle(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "loader", "testdata", "reference_bundle.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	return string(data)
}

func outer(entries ...string) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = `{"fullUrl":"urn:uuid:case-` + string(rune('a'+i)) + `","resource":` + e + `}`
	}
	return `{"resourceType":"Bundle","type":"batch","meta":{"tag":[]},"entry":[` + strings.Join(parts, ",") + `]}`
}

func newStream(t *testing.T) *Reconciler {
	t.Helper()
	l, err := loader.New()
	if err != nil {
		t.Fatalf("loader.New() error = %v", err)
	}
	r, err := engine.New(catalog.Reference(), pv.WithWorkerCount(1))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	return NewReconciler(l, r.Reconcile)
}

func TestReconcile_InOrder(t *testing.T) {
	ref := referenceBundle(t)
	input := outer(ref, noDischarge, ref)

	var got []*CaseResult
	sum := Aggregate(newStream(t).Reconcile(context.Background(), strings.NewReader(input)), func(cr *CaseResult) {
		got = append(got, cr)
	})

	if len(got) != 3 {
		t.Fatalf("got %d results; want 3", len(got))
	}
	for i, cr := range got {
		if cr.Index != i {
			t.Errorf("result %d has index %d", i, cr.Index)
		}
	}
	if got[0].Err != nil || got[0].CaseID != "case-ref" || got[0].FullURL != "urn:uuid:case-a" {
		t.Errorf("first result = %+v", got[0])
	}
	var missing *pv.MissingDateError
	if !errors.As(got[1].Err, &missing) || missing.Field != pv.FieldDischarge {
		t.Errorf("second result error = %v; want missing discharge", got[1].Err)
	}

	if sum.TotalCases != 3 || sum.FailedCases != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Adjustments != 4 {
		t.Errorf("Adjustments = %d; want 4", sum.Adjustments)
	}
	if !sum.HasErrors() || len(sum.Errors) != 1 {
		t.Errorf("Errors = %v", sum.Errors)
	}
}

func TestReconcile_NotABundle(t *testing.T) {
	input := outer(`{"resourceType":"Patient","id":"p"}`)
	sum := Aggregate(newStream(t).Reconcile(context.Background(), strings.NewReader(input)), nil)
	if sum.TotalCases != 1 || sum.FailedCases != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if !errors.Is(sum.Errors[0], loader.ErrNotBundle) {
		t.Errorf("error = %v; want ErrNotBundle", sum.Errors[0])
	}
}

func TestReconcile_NoEntries(t *testing.T) {
	sum := Aggregate(newStream(t).Reconcile(context.Background(), strings.NewReader(`{"resourceType":"Bundle"}`)), nil)
	if sum.TotalCases != 0 || sum.HasErrors() {
		t.Errorf("summary = %+v", sum)
	}
}

func TestReconcile_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an object", `[1,2]`},
		{"empty", ``},
		{"entry not an array", `{"entry":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []*CaseResult
			Aggregate(newStream(t).Reconcile(context.Background(), strings.NewReader(tt.input)), func(cr *CaseResult) {
				got = append(got, cr)
			})
			if len(got) != 1 || got[0].Index != -1 || got[0].Err == nil {
				t.Errorf("results = %+v; want one outer error", got)
			}
		})
	}
}

func TestReconcile_TruncatedEntry(t *testing.T) {
	ref := referenceBundle(t)
	input := `{"entry":[{"resource":` + ref + `},{"resource":{"resourceType":`

	var got []*CaseResult
	sum := Aggregate(newStream(t).Reconcile(context.Background(), strings.NewReader(input)), func(cr *CaseResult) {
		got = append(got, cr)
	})
	if len(got) != 2 {
		t.Fatalf("got %d results; want 2", len(got))
	}
	if got[0].Err != nil {
		t.Errorf("first entry error = %v", got[0].Err)
	}
	if got[1].Index != 1 || got[1].Err == nil {
		t.Errorf("second result = %+v; want decode error", got[1])
	}
	if sum.FailedCases != 1 {
		t.Errorf("FailedCases = %d; want 1", sum.FailedCases)
	}
}

func TestReconcile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum := Aggregate(newStream(t).Reconcile(ctx, strings.NewReader(outer(referenceBundle(t)))), nil)
	if !sum.HasErrors() || !errors.Is(sum.Errors[0], context.Canceled) {
		t.Errorf("Errors = %v; want context.Canceled", sum.Errors)
	}
}

func TestWithBufferSize(t *testing.T) {
	s := newStream(t)
	if s.WithBufferSize(0).bufferSize != 16 {
		t.Error("non-positive size should keep the default")
	}
	if s.WithBufferSize(4).bufferSize != 4 {
		t.Error("buffer size not applied")
	}
}
