package report

import (
	"time"

	"github.com/Afrawles/worklogwatch/internal/timetracker"
	"github.com/Afrawles/worklogwatch/internal/worklog"
)

// Report is the day-by-day view of one user's logged time over a date range.
type Report struct {
	User        string
	Start       time.Time
	End         time.Time
	Baseline    time.Duration
	GeneratedAt time.Time
	Days        []Day
	Deviations  []timetracker.Deviation
}

type Day struct {
	Date      time.Time
	SpentTime time.Duration
	Worklogs  []worklog.Worklog
	Deviates  bool
}

func (d Day) Delta(baseline time.Duration) time.Duration {
	return d.SpentTime - baseline
}

type Options struct {
	Baseline     time.Duration
	SkipWeekends bool
	GeneratedAt  time.Time
}

// New builds a Report from a summary. Days are in ascending order.
func New(user string, start, end time.Time, s timetracker.UserWorklogsSummary, opts Options) *Report {
	deviations := timetracker.Deviations(s, timetracker.DeviationOptions{
		Baseline:     opts.Baseline,
		SkipWeekends: opts.SkipWeekends,
	})
	deviating := make(map[time.Time]bool, len(deviations))
	for _, d := range deviations {
		deviating[d.Date] = true
	}

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	r := &Report{
		User:        user,
		Start:       worklog.DateOf(start),
		End:         worklog.DateOf(end),
		Baseline:    opts.Baseline,
		GeneratedAt: generatedAt,
		Days:        make([]Day, 0, len(s)),
		Deviations:  deviations,
	}
	for _, date := range s.Days() {
		ws := s[date]
		r.Days = append(r.Days, Day{
			Date:      date,
			SpentTime: ws.SpentTime,
			Worklogs:  ws.Worklogs,
			Deviates:  deviating[date],
		})
	}
	return r
}

// Worklogs returns every worklog of the report in day order.
func (r *Report) Worklogs() []worklog.Worklog {
	var out []worklog.Worklog
	for _, d := range r.Days {
		out = append(out, d.Worklogs...)
	}
	return out
}
