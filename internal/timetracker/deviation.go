package timetracker

import (
	"time"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

// Deviation is a day whose logged time differs from the baseline.
type Deviation struct {
	Date      time.Time     `json:"date"`
	SpentTime time.Duration `json:"spent_time"`
	Baseline  time.Duration `json:"baseline"`
}

// Delta is positive for overtime and negative for missing time.
func (d Deviation) Delta() time.Duration {
	return d.SpentTime - d.Baseline
}

type DeviationOptions struct {
	Baseline     time.Duration
	SkipWeekends bool
}

// Deviations returns, in ascending date order, every day of the summary
// whose spent time is not exactly the baseline. Empty days deviate too.
func Deviations(s UserWorklogsSummary, opts DeviationOptions) []Deviation {
	var out []Deviation
	for _, day := range s.Days() {
		if opts.SkipWeekends && worklog.IsWeekend(day) {
			continue
		}
		spent := s[day].SpentTime
		if spent != opts.Baseline {
			out = append(out, Deviation{Date: day, SpentTime: spent, Baseline: opts.Baseline})
		}
	}
	return out
}
