package scoring

import (
	"context"
	"time"

	pv "github.com/gofhir/procvalidity"
)

// Input is the part of a corrected record a scorer may rely on.
type Input struct {
	Code         string    `json:"code"`
	PerformedOn  time.Time `json:"performedOn"`
	ValidityDays int       `json:"validityDays"`
	EndsOn       time.Time `json:"endsOn"`
}

// Inputs extracts scoring inputs from corrected records, keeping their order.
func Inputs(records []pv.ProcedureValidity) []Input {
	out := make([]Input, len(records))
	for i, rec := range records {
		out[i] = Input{
			Code:         rec.Procedure.Code,
			PerformedOn:  rec.Procedure.PerformedOn,
			ValidityDays: rec.ValidityDays,
			EndsOn:       rec.EndsOn,
		}
	}
	return out
}

// TableTypeNOR marks a plain membership table: a code either is listed or not.
const TableTypeNOR = "NOR"

// WeightedTable is a code table together with the score it contributes.
type WeightedTable struct {
	Name   string   `json:"name" mapstructure:"name"`
	Type   string   `json:"type" mapstructure:"type"`
	Codes  []string `json:"codes" mapstructure:"codes"`
	Weight int      `json:"weight" mapstructure:"weight"`
}

// Contains reports whether code is listed in the table.
func (t WeightedTable) Contains(code string) bool {
	for _, c := range t.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// Request is everything a scorer needs for one case.
type Request struct {
	Admission  time.Time
	Discharge  time.Time
	Procedures []Input
	Tables     []WeightedTable
	Threshold  int
}

// NewRequest builds a request from a reconciliation result.
func NewRequest(r *pv.Result, tables []WeightedTable, threshold int) Request {
	return Request{
		Admission:  r.AdmissionDate,
		Discharge:  r.DischargeDate,
		Procedures: Inputs(r.Corrected),
		Tables:     tables,
		Threshold:  threshold,
	}
}

// Scorer computes a score for one case.
type Scorer interface {
	Score(ctx context.Context, req Request) (int, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, req Request) (int, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, req Request) (int, error) {
	return f(ctx, req)
}

// ReferenceThreshold is the threshold used with Reference tables.
const ReferenceThreshold = 50

// Reference returns three NOR tables weighted 10, 20 and 30.
func Reference() []WeightedTable {
	return []WeightedTable{
		{Name: "T1", Type: TableTypeNOR, Codes: []string{"3-333", "3-335", "3-338"}, Weight: 10},
		{Name: "T2", Type: TableTypeNOR, Codes: []string{"3-334"}, Weight: 20},
		{Name: "T3", Type: TableTypeNOR, Codes: []string{"4-441", "4-442", "4-443", "4-444", "4-449", "4-450"}, Weight: 30},
	}
}
