package scoring

import (
	"context"
	"time"

	pv "github.com/gofhir/procvalidity"
)

// DaysAtOrAbove counts the calendar days of the case whose day score
// reaches the threshold.
//
// Days run from the admission day through the discharge day. A procedure
// covers the days of [performed-on day, ends-on day). A day's score is the
// sum of the weights of every table that has at least one member code
// covering it; a table counts once per day however many of its codes do.
type DaysAtOrAbove struct{}

// Score implements Scorer.
func (DaysAtOrAbove) Score(ctx context.Context, req Request) (int, error) {
	if req.Admission.IsZero() {
		return 0, &pv.MissingDateError{Field: pv.FieldAdmission}
	}
	if req.Discharge.IsZero() {
		return 0, &pv.MissingDateError{Field: pv.FieldDischarge}
	}

	first := truncateDay(req.Admission)
	last := truncateDay(req.Discharge)

	count := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if DayScore(d, req.Procedures, req.Tables) >= req.Threshold {
			count++
		}
	}
	return count, nil
}

// DayScore sums the weights of the tables covering day.
func DayScore(day time.Time, procedures []Input, tables []WeightedTable) int {
	day = truncateDay(day)
	score := 0
	for _, t := range tables {
		for _, p := range procedures {
			if t.Contains(p.Code) && covers(p, day) {
				score += t.Weight
				break
			}
		}
	}
	return score
}

func covers(p Input, day time.Time) bool {
	start := truncateDay(p.PerformedOn)
	end := truncateDay(p.EndsOn)
	return !day.Before(start) && day.Before(end)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
