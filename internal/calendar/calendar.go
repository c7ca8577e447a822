// Package calendar buckets inspections by day for the month, week, and day
// views. It is a display query, not a scheduler: no inspector allocation,
// conflict resolution, or capacity checks happen here.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/systemhause/hause/internal/models"
)

// Granularity selects the visible range around the reference date.
type Granularity string

const (
	Month Granularity = "month"
	Week  Granularity = "week"
	Day   Granularity = "day"
)

// DayBucket holds the inspections scheduled on one visible day, ordered by
// time. Ties keep input order.
type DayBucket struct {
	Date        time.Time
	Inspections []models.Inspection
}

// Bucket groups inspections by the day their ScheduledAt falls on, for every
// day visible at the given granularity. Month covers full weeks: leading and
// trailing days from adjacent months are included to fill the grid. The
// result is one bucket per visible day, in order, empty days included.
// Pure function: the input slice is not mutated.
func Bucket(inspections []models.Inspection, date time.Time, g Granularity) ([]DayBucket, error) {
	start, end, err := visibleRange(date, g)
	if err != nil {
		return nil, err
	}

	// Walk calendar days, not 24-hour spans: a DST transition inside the
	// range makes one day 23 or 25 hours and must not change the day count.
	var buckets []DayBucket
	index := make(map[string]int)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d.Format("2006-01-02")] = len(buckets)
		buckets = append(buckets, DayBucket{Date: d})
	}

	for _, ins := range inspections {
		key := ins.ScheduledAt.In(date.Location()).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			continue
		}
		buckets[i].Inspections = append(buckets[i].Inspections, ins)
	}

	for i := range buckets {
		sort.SliceStable(buckets[i].Inspections, func(a, b int) bool {
			return buckets[i].Inspections[a].ScheduledAt.Before(buckets[i].Inspections[b].ScheduledAt)
		})
	}
	return buckets, nil
}

// visibleRange computes the first and last visible day for a granularity.
// Weeks run Sunday through Saturday.
func visibleRange(date time.Time, g Granularity) (start, end time.Time, err error) {
	day := midnight(date)
	switch g {
	case Day:
		return day, day, nil
	case Week:
		start = day.AddDate(0, 0, -int(day.Weekday()))
		return start, start.AddDate(0, 0, 6), nil
	case Month:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		last := first.AddDate(0, 1, -1)
		start = first.AddDate(0, 0, -int(first.Weekday()))
		end = last.AddDate(0, 0, 6-int(last.Weekday()))
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("calendar: unknown granularity %q", g)
	}
}

// midnight truncates a time to the start of its day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
