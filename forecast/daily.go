// Package forecast condenses a list of forecast samples into one representative sample per day.
package forecast

import (
	"time"

	"weather-app/models"
)

const (
	// DefaultDays is the number of days Daily returns at most.
	DefaultDays = 5
	// NoonHour is the hour Daily selects samples closest to.
	NoonHour = 12

	dateLayout = "2006-01-02"
)

// Selector picks, for each of the first Days dates in a sample list, the
// sample whose hour is closest to Hour. Days <= 0 means DefaultDays and an
// Hour outside 0..23 means NoonHour. Hour 0 is midnight, so the zero value
// selects midnight samples; use Daily for the noon rule.
type Selector struct {
	Days int
	Hour int
}

type dayGroup struct {
	date    string
	samples []models.ForecastSample
	hours   []int
}

// Daily returns the sample nearest to noon for each of the first five dates.
func Daily(samples []models.ForecastSample) ([]models.ForecastSample, error) {
	return Selector{Days: DefaultDays, Hour: NoonHour}.Select(samples)
}

// Select returns at most s.Days samples, one per date, in the order the dates
// first appear. Within a date the first sample with the smallest distance to
// s.Hour wins. The input is never modified.
func (s Selector) Select(samples []models.ForecastSample) ([]models.ForecastSample, error) {
	days := s.Days
	if days <= 0 {
		days = DefaultDays
	}
	target := s.Hour
	if target < 0 || target > 23 {
		target = NoonHour
	}

	groups, err := group(samples)
	if err != nil {
		return nil, err
	}
	if len(groups) > days {
		groups = groups[:days]
	}

	result := make([]models.ForecastSample, 0, len(groups))
	for _, g := range groups {
		best := 0
		minDiff := abs(g.hours[0] - target)
		for i := 1; i < len(g.samples); i++ {
			if diff := abs(g.hours[i] - target); diff < minDiff {
				minDiff = diff
				best = i
			}
		}
		result = append(result, g.samples[best])
	}

	return result, nil
}

// group partitions samples by date in a single pass, keeping first-seen date
// order and the order of samples within each date.
func group(samples []models.ForecastSample) ([]dayGroup, error) {
	var groups []dayGroup
	index := make(map[string]int)

	var previous time.Time
	for i, sample := range samples {
		ts, err := time.Parse(models.TimestampLayout, sample.Timestamp)
		if err != nil {
			return nil, &ParseError{Index: i, Timestamp: sample.Timestamp, Err: err}
		}

		day := truncateToDay(ts)
		if i > 0 && day.Before(previous) {
			return nil, &OrderError{
				Index:    i,
				Date:     day.Format(dateLayout),
				Previous: previous.Format(dateLayout),
			}
		}
		previous = day

		date := day.Format(dateLayout)
		pos, ok := index[date]
		if !ok {
			pos = len(groups)
			index[date] = pos
			groups = append(groups, dayGroup{date: date})
		}
		groups[pos].samples = append(groups[pos].samples, sample)
		groups[pos].hours = append(groups[pos].hours, ts.Hour())
	}

	return groups, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
