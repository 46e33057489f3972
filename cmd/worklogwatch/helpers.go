package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

// defaultDays is the length of the range checked when no dates are given.
const defaultDays = 7

// resolveRange turns the date flags into an inclusive [start, end] range of
// calendar days. A period excludes explicit dates. Without any flag the
// range is the last seven days ending today.
func resolveRange(now time.Time, period, startStr, endStr string) (time.Time, time.Time, error) {
	if period != "" {
		if startStr != "" || endStr != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--period cannot be combined with --start or --end")
		}
		return resolvePeriod(now, period)
	}

	today := worklog.DateOf(now)
	var start, end time.Time
	var err error

	if endStr == "" {
		end = today
	} else if end, err = worklog.ParseDate(endStr); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endStr, err)
	}

	if startStr == "" {
		start = end.AddDate(0, 0, -(defaultDays - 1))
	} else if start, err = worklog.ParseDate(startStr); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startStr, err)
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s",
			worklog.FormatDate(start), worklog.FormatDate(end))
	}
	return start, end, nil
}

// resolvePeriod maps a named period to an inclusive range of days. Weeks
// start on Monday. The current week and month end today.
func resolvePeriod(now time.Time, period string) (time.Time, time.Time, error) {
	today := worklog.DateOf(now)

	daysSinceMonday := int(today.Weekday() - time.Monday)
	if daysSinceMonday < 0 {
		daysSinceMonday += 7
	}
	monday := today.AddDate(0, 0, -daysSinceMonday)
	firstOfThisMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch strings.ToLower(period) {
	case "today":
		return today, today, nil
	case "yesterday":
		yesterday := today.AddDate(0, 0, -1)
		return yesterday, yesterday, nil
	case "this-week", "thisweek":
		return monday, today, nil
	case "last-week", "lastweek":
		return monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -1), nil
	case "this-month", "thismonth":
		return firstOfThisMonth, today, nil
	case "last-month", "lastmonth":
		return firstOfThisMonth.AddDate(0, -1, 0), firstOfThisMonth.AddDate(0, 0, -1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q (valid: today, yesterday, this-week, last-week, this-month, last-month)", period)
	}
}
