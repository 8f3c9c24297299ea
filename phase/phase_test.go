package phase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/catalog"
)

func day(d int) time.Time {
	return time.Date(2020, time.December, d, 0, 0, 0, 0, time.UTC)
}

func referenceCase() *pv.Case {
	return &pv.Case{
		ID: "ref",
		Procedures: []pv.Procedure{
			{Code: "3-333", PerformedOn: day(24)},
			{Code: "3-334", PerformedOn: day(26)},
			{Code: "4-441", PerformedOn: day(26)},
			{Code: "4-449", PerformedOn: day(29)},
		},
		AdmissionDate: day(24),
		DischargeDate: day(31),
	}
}

func record(t *testing.T, code string, on time.Time, days int, set string, discharge time.Time) pv.ProcedureValidity {
	t.Helper()
	entry := pv.NewClassificationEntry(days, set, "T", "G", code)
	rec, err := pv.NewProcedureValidity(pv.Procedure{Code: code, PerformedOn: on}, entry, discharge)
	if err != nil {
		t.Fatalf("NewProcedureValidity(%s) error = %v", code, err)
	}
	return rec
}

func TestClassify(t *testing.T) {
	records, err := Classify(context.Background(), catalog.Reference(), referenceCase())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("len = %d; want 4", len(records))
	}

	want := []struct {
		code, set, typ string
	}{
		{"3-333", "TE_Codes", "Mit_TE"},
		{"3-334", "TE_Codes", "Ohne_TE"},
		{"4-441", "Therapieart", "Blablub"},
		{"4-449", "Therapieart", "Blablub"},
	}
	for i, w := range want {
		got := records[i]
		if got.Procedure.Code != w.code || got.ValiditySet != w.set || got.TreatmentType != w.typ {
			t.Errorf("records[%d] = %s/%s/%s; want %s/%s/%s", i,
				got.Procedure.Code, got.ValiditySet, got.TreatmentType, w.code, w.set, w.typ)
		}
		if got.ValidityDays != 7 {
			t.Errorf("records[%d].ValidityDays = %d; want 7", i, got.ValidityDays)
		}
	}
}

func TestClassify_Unclassified(t *testing.T) {
	c := &pv.Case{
		Procedures:    []pv.Procedure{{Code: "9-999", PerformedOn: day(25)}},
		AdmissionDate: day(24),
		DischargeDate: day(31),
	}
	records, err := Classify(context.Background(), catalog.Reference(), c)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	got := records[0]
	if got.ValidityDays != 1 || got.ValiditySet != "" || got.TreatmentType != "" || got.ValidityGroup != "" {
		t.Errorf("unclassified record = %+v; want 1 day and empty tags", got)
	}
	if !got.EndsOn.Equal(day(26)) {
		t.Errorf("EndsOn = %v; want %v", got.EndsOn, day(26))
	}
}

func TestClassify_MissingDates(t *testing.T) {
	tests := []struct {
		name  string
		c     *pv.Case
		field pv.DateField
	}{
		{
			name:  "discharge",
			c:     &pv.Case{AdmissionDate: day(24), Procedures: []pv.Procedure{{Code: "3-333", PerformedOn: day(24)}}},
			field: pv.FieldDischarge,
		},
		{
			name:  "performed",
			c:     &pv.Case{AdmissionDate: day(24), DischargeDate: day(31), Procedures: []pv.Procedure{{Code: "3-333"}}},
			field: pv.FieldPerformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(context.Background(), catalog.Reference(), tt.c)
			if !errors.Is(err, pv.ErrMissingDate) {
				t.Fatalf("error = %v; want ErrMissingDate", err)
			}
			var mde *pv.MissingDateError
			if !errors.As(err, &mde) || mde.Field != tt.field {
				t.Errorf("field = %v; want %v", mde, tt.field)
			}
		})
	}
}

func TestGroup(t *testing.T) {
	records, _ := Classify(context.Background(), catalog.Reference(), referenceCase())
	groups := Group(records)

	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d; want 2", len(groups))
	}
	if got := SetNames(groups); !reflect.DeepEqual(got, []string{"TE_Codes", "Therapieart"}) {
		t.Errorf("SetNames() = %v", got)
	}
	if len(groups["TE_Codes"]) != 2 || groups["TE_Codes"][0].Procedure.Code != "3-333" {
		t.Errorf("TE_Codes = %v", groups["TE_Codes"])
	}
}

func TestAdjust_ReferenceScenario(t *testing.T) {
	records, err := Classify(context.Background(), catalog.Reference(), referenceCase())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	groups := Group(records)

	want := map[string]struct {
		days int
		ends time.Time
	}{
		"3-333": {2, day(26)},
		"3-334": {7, day(31)},
		"4-441": {3, day(29)},
		"4-449": {7, day(31)},
	}

	for _, name := range SetNames(groups) {
		for _, rec := range Adjust(groups[name]) {
			w := want[rec.Procedure.Code]
			if rec.ValidityDays != w.days {
				t.Errorf("%s ValidityDays = %d; want %d", rec.Procedure.Code, rec.ValidityDays, w.days)
			}
			if !rec.EndsOn.Equal(w.ends) {
				t.Errorf("%s EndsOn = %v; want %v", rec.Procedure.Code, rec.EndsOn, w.ends)
			}
		}
	}
}

func TestAdjustGroup_RecordsAdjustments(t *testing.T) {
	group := []pv.ProcedureValidity{
		record(t, "4-449", day(29), 7, "S", day(31)),
		record(t, "4-441", day(26), 7, "S", day(31)),
	}

	out, adjustments := AdjustGroup(group)
	if out[0].Procedure.Code != "4-441" {
		t.Errorf("out[0] = %s; want sorted by date", out[0].Procedure.Code)
	}
	if len(adjustments) != 1 {
		t.Fatalf("len(adjustments) = %d; want 1", len(adjustments))
	}
	a := adjustments[0]
	if a.Code != "4-441" || a.NextCode != "4-449" || a.GapDays != -4 || a.DaysBefore != 7 || a.DaysAfter != 3 {
		t.Errorf("adjustment = %+v", a)
	}
	if a.Clamped {
		t.Error("shortened window should not be clamped")
	}

	// input untouched
	if group[0].Procedure.Code != "4-449" || group[1].ValidityDays != 7 {
		t.Errorf("input modified: %v", group)
	}
}

func TestAdjust_NonOverlapWithinSet(t *testing.T) {
	group := []pv.ProcedureValidity{
		record(t, "a", day(1), 7, "S", day(31)),
		record(t, "b", day(3), 7, "S", day(31)),
		record(t, "c", day(20), 3, "S", day(31)),
	}

	out := Adjust(group)
	for i := 0; i < len(out)-1; i++ {
		if out[i].EndsOn.After(out[i+1].Procedure.PerformedOn) {
			t.Errorf("%s ends %v after %s starts %v", out[i].Procedure.Code, out[i].EndsOn,
				out[i+1].Procedure.Code, out[i+1].Procedure.PerformedOn)
		}
	}
}

func TestAdjust_SpacedInputUnchanged(t *testing.T) {
	group := []pv.ProcedureValidity{
		record(t, "a", day(1), 3, "S", day(31)),
		record(t, "b", day(5), 3, "S", day(31)),
		record(t, "c", day(10), 3, "S", day(31)),
	}

	out, adjustments := AdjustGroup(group)
	if len(adjustments) != 0 {
		t.Errorf("adjustments = %v; want none", adjustments)
	}
	if !reflect.DeepEqual(out, group) {
		t.Errorf("Adjust() = %v; want %v", out, group)
	}

	again := Adjust(out)
	if !reflect.DeepEqual(again, out) {
		t.Errorf("second Adjust() = %v; want %v", again, out)
	}
}

func TestAdjust_TouchingWindows(t *testing.T) {
	// a ends exactly when b starts: gap 0 still counts as overlap
	group := []pv.ProcedureValidity{
		record(t, "a", day(1), 3, "S", day(31)),
		record(t, "b", day(4), 3, "S", day(31)),
	}

	out, adjustments := AdjustGroup(group)
	if len(adjustments) != 1 || adjustments[0].GapDays != 0 {
		t.Errorf("adjustments = %v; want one with gap 0", adjustments)
	}
	if out[0].ValidityDays != 3 {
		t.Errorf("ValidityDays = %d; want 3", out[0].ValidityDays)
	}
}

func TestAdjust_DischargeClamp(t *testing.T) {
	group := []pv.ProcedureValidity{
		record(t, "a", day(20), 30, "S", day(25)),
	}
	out := Adjust(group)
	if !out[0].EndsOn.Equal(day(25)) {
		t.Errorf("EndsOn = %v; want discharge %v", out[0].EndsOn, day(25))
	}
	if out[0].ValidityDays != 30 {
		t.Errorf("ValidityDays = %d; want 30 (clamp only affects the end)", out[0].ValidityDays)
	}
}

func TestAdjust_SingleAndEmpty(t *testing.T) {
	single := []pv.ProcedureValidity{record(t, "a", day(1), 7, "S", day(31))}
	if out := Adjust(single); !reflect.DeepEqual(out, single) {
		t.Errorf("Adjust(single) = %v; want %v", out, single)
	}
	if out := Adjust(nil); len(out) != 0 {
		t.Errorf("Adjust(nil) = %v; want empty", out)
	}
}

func TestAdjust_SameDayGoesNegative(t *testing.T) {
	group := []pv.ProcedureValidity{
		record(t, "a", day(10), 1, "S", day(31)),
		record(t, "b", day(10), 7, "S", day(31)),
	}
	out := Adjust(group)
	// gap = 10 - 11 = -1 -> 1 + (-1) = 0, no floor
	if out[0].Procedure.Code != "a" || out[0].ValidityDays != 0 {
		t.Errorf("out[0] = %v; want a with 0 days", out[0])
	}
	if !out[0].EndsOn.Equal(day(10)) {
		t.Errorf("EndsOn = %v; want %v", out[0].EndsOn, day(10))
	}
}

func TestAdjust_OneNeighbourOnly(t *testing.T) {
	// a overlaps b and c; only the distance to b is used
	group := []pv.ProcedureValidity{
		record(t, "a", day(1), 20, "S", day(31)),
		record(t, "b", day(5), 1, "S", day(31)),
		record(t, "c", day(6), 1, "S", day(31)),
	}
	out := Adjust(group)
	if out[0].ValidityDays != 4 {
		t.Errorf("a ValidityDays = %d; want 4", out[0].ValidityDays)
	}
	// b ends on day 6 which is exactly c's start: gap 0, unchanged
	if out[1].ValidityDays != 1 {
		t.Errorf("b ValidityDays = %d; want 1", out[1].ValidityDays)
	}
}

func TestAdjust_Deterministic(t *testing.T) {
	group := []pv.ProcedureValidity{
		record(t, "x", day(3), 7, "S", day(31)),
		record(t, "y", day(3), 7, "S", day(31)),
		record(t, "z", day(1), 7, "S", day(31)),
	}
	first := Adjust(group)
	for i := 0; i < 10; i++ {
		if got := Adjust(group); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %v; want %v", i, got, first)
		}
	}
	if first[1].Procedure.Code != "x" || first[2].Procedure.Code != "y" {
		t.Errorf("ties reordered: %v", first)
	}
}

func TestGap(t *testing.T) {
	a := record(t, "a", day(24), 7, "S", day(31))
	b := record(t, "b", day(26), 7, "S", day(31))
	if got := Gap(a, b); got != -5 {
		t.Errorf("Gap() = %d; want -5", got)
	}

	// partial days truncate toward zero
	c := record(t, "c", day(31).Add(12*time.Hour), 1, "S", day(31).Add(24*time.Hour))
	if got := Gap(a, c); got != 0 {
		t.Errorf("Gap() = %d; want 0", got)
	}
}
