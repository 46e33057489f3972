package report

import (
	"sort"
	"time"
)

type Stats struct {
	Days          int
	ActiveDays    int
	DeviatingDays int
	Worklogs      int
	Total         time.Duration
	AveragePerDay time.Duration
	ByIssue       []IssueTotal
}

type IssueTotal struct {
	Key       string
	Summary   string
	SpentTime time.Duration
	Worklogs  int
}

// Statistics aggregates the report. Issues are ordered by time spent,
// largest first, then by key.
func (r *Report) Statistics() Stats {
	stats := Stats{Days: len(r.Days)}

	byIssue := make(map[string]*IssueTotal)
	for _, d := range r.Days {
		if d.SpentTime > 0 {
			stats.ActiveDays++
		}
		if d.Deviates {
			stats.DeviatingDays++
		}
		stats.Total += d.SpentTime

		for _, w := range d.Worklogs {
			stats.Worklogs++
			it, ok := byIssue[w.IssueKey]
			if !ok {
				it = &IssueTotal{Key: w.IssueKey, Summary: w.IssueSummary}
				byIssue[w.IssueKey] = it
			}
			it.SpentTime += w.TimeSpent
			it.Worklogs++
		}
	}

	if stats.Days > 0 {
		stats.AveragePerDay = stats.Total / time.Duration(stats.Days)
	}

	stats.ByIssue = make([]IssueTotal, 0, len(byIssue))
	for _, it := range byIssue {
		stats.ByIssue = append(stats.ByIssue, *it)
	}
	sort.Slice(stats.ByIssue, func(i, j int) bool {
		a, b := stats.ByIssue[i], stats.ByIssue[j]
		if a.SpentTime != b.SpentTime {
			return a.SpentTime > b.SpentTime
		}
		return a.Key < b.Key
	})

	return stats
}
