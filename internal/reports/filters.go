package reports

import (
	"errors"
	"time"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

// GetDateRange returns start and end time for the given preset or custom (startStr/endStr required for custom).
// startStr/endStr expected in "2006-01-02" format when dateRange == DateRangeCustom.
// Days are UTC days, the zone event times without an offset are read in.
func GetDateRange(now time.Time, dateRange, startStr, endStr string) (time.Time, time.Time, error) {
	now = now.UTC()
	loc := time.UTC

	switch dateRange {
	case DateRangeDaily:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		end := start.Add(24*time.Hour - time.Second)
		return start, end, nil
	case DateRangeWeekly:
		// last 7 days (including today)
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, loc)
		start := time.Date(now.Year(), now.Month(), now.Day()-6, 0, 0, 0, 0, loc)
		return start, end, nil
	case DateRangeMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0).Add(-time.Second)
		return start, end, nil
	case DateRangeYearly:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		end := time.Date(now.Year(), 12, 31, 23, 59, 59, 0, loc)
		return start, end, nil
	case DateRangeCustom:
		if startStr == "" || endStr == "" {
			return time.Time{}, time.Time{}, errors.New("start_date and end_date required for custom range")
		}
		start, err := time.ParseInLocation("2006-01-02", startStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := time.ParseInLocation("2006-01-02", endStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// include entire end day
		end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		if start.After(end) {
			return time.Time{}, time.Time{}, errors.New("start_date must be before end_date")
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, errors.New("unsupported date range: " + dateRange)
	}
}

// FilterEvents keeps the events overlapping [start, end]. An empty or "all"
// range keeps everything; events whose start cannot be parsed are dropped
// from ranged exports.
func FilterEvents(events []event.Event, req ExportRequest, now time.Time) ([]event.Event, error) {
	if req.DateRange == "" || req.DateRange == DateRangeAll {
		return events, nil
	}

	start, end, err := GetDateRange(now, req.DateRange, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		from, err := e.StartTime()
		if err != nil {
			continue
		}
		to, err := e.EndTime()
		if err != nil {
			to = from
		}
		if from.After(end) || to.Before(start) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
