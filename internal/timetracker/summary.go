package timetracker

import (
	"sort"
	"time"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

// WorklogSummary aggregates the worklogs of one calendar day.
// SpentTime always equals the sum of TimeSpent over Worklogs.
type WorklogSummary struct {
	SpentTime time.Duration     `json:"spent_time"`
	Worklogs  []worklog.Worklog `json:"worklogs"`
}

// UserWorklogsSummary maps every day of the requested range to its summary.
// Days without any worklog are present with a zero SpentTime.
type UserWorklogsSummary map[time.Time]WorklogSummary

// Days returns the summary's days in ascending order.
func (s UserWorklogsSummary) Days() []time.Time {
	days := make([]time.Time, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// Total returns the time spent over all days.
func (s UserWorklogsSummary) Total() time.Duration {
	var total time.Duration
	for _, ws := range s {
		total += ws.SpentTime
	}
	return total
}

// Summarize buckets worklogs by calendar day over [start, end]. The result
// has exactly one entry per day of the range; worklogs dated outside of it
// are ignored. A start after end yields an empty summary.
func Summarize(uw *worklog.UserWorklogs, start, end time.Time) UserWorklogsSummary {
	byDate := make(map[time.Time][]worklog.Worklog)
	if uw != nil {
		for _, w := range uw.Worklogs {
			day := worklog.DateOf(w.Date)
			byDate[day] = append(byDate[day], w)
		}
	}

	summary := make(UserWorklogsSummary)
	for _, day := range worklog.Days(start, end) {
		wls := byDate[day]
		if wls == nil {
			wls = []worklog.Worklog{}
		}

		var spent time.Duration
		for _, w := range wls {
			spent += w.TimeSpent
		}

		summary[day] = WorklogSummary{
			SpentTime: spent,
			Worklogs:  wls,
		}
	}
	return summary
}
