// Package daybucket normalizes date ranges to the day granularity every
// experiment query is bucketed by.
package daybucket

import (
	"time"

	"github.com/liveops-hq/backend/internal/constant"
	"github.com/liveops-hq/backend/internal/model"
)

// Truncate floors an instant to its UTC day boundary.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalize widens a range to whole UTC days: the start is floored, the end
// is ceiled to the next day boundary when it is not already on one. The same
// input always yields the same output, which the query cache relies on.
func Normalize(r model.DateRange) model.DateRange {
	start := Truncate(r.Start)
	end := Truncate(r.End)
	if !end.Equal(r.End.UTC()) {
		end = end.AddDate(0, 0, 1)
	}
	return model.DateRange{Start: start, End: end}
}

// ExperimentRange is the interval an experiment series covers: the caller's
// range when given, otherwise the full [startDate, now) lifetime.
func ExperimentRange(startDate time.Time, requested *model.DateRange, now time.Time) model.DateRange {
	if requested != nil {
		return Normalize(*requested)
	}
	return Normalize(model.DateRange{Start: startDate, End: now})
}

// CupedRange is the pre-experiment covariate window: the configured range
// when given, otherwise one month ending at the experiment start.
func CupedRange(startDate time.Time, configured *model.DateRange) model.DateRange {
	if configured != nil {
		return Normalize(*configured)
	}
	start := Truncate(startDate)
	return model.DateRange{
		Start: start.AddDate(0, -constant.DefaultCupedLookbackMonths, 0),
		End:   start,
	}
}

// DefaultRange bounds a generic analytics query when the caller supplies no
// date filter.
func DefaultRange(now time.Time) model.DateRange {
	end := Truncate(now).AddDate(0, 0, 1)
	return model.DateRange{
		Start: end.AddDate(0, 0, -constant.DefaultSeriesLookbackDays),
		End:   end,
	}
}
