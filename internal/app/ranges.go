package app

import (
	"time"

	"ensurax-tui/internal/api"
)

// quickRange is one of the preset date filters on the dashboard header.
type quickRange int

const (
	rangeAll quickRange = iota
	rangeLast3Months
	rangeLast6Months
	rangeLast12Months
	rangeYearToDate
)

func (q quickRange) label() string {
	switch q {
	case rangeLast3Months:
		return "3m"
	case rangeLast6Months:
		return "6m"
	case rangeLast12Months:
		return "12m"
	case rangeYearToDate:
		return "YTD"
	default:
		return "all"
	}
}

// resolve turns a preset into the inclusive, open-ended date range sent to
// the backend. Month presets start on the first of the month n-1 months
// back so the current partial month counts as one of the n.
func (q quickRange) resolve(now time.Time) api.Range {
	switch q {
	case rangeLast3Months:
		return api.Range{StartDate: startOfLastNMonths(now, 3)}
	case rangeLast6Months:
		return api.Range{StartDate: startOfLastNMonths(now, 6)}
	case rangeLast12Months:
		return api.Range{StartDate: startOfLastNMonths(now, 12)}
	case rangeYearToDate:
		return api.Range{StartDate: startOfYear(now)}
	default:
		return api.Range{}
	}
}

func startOfLastNMonths(now time.Time, n int) string {
	if n < 1 {
		n = 1
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -(n - 1), 0).Format("2006-01-02")
}

func startOfYear(now time.Time) string {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
}
