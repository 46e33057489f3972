package worklog

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day layout used on the command line, in Jira
// queries and in exported reports.
const DateLayout = "2006-01-02"

// Worklog is one logged time entry, reduced to the calendar day it started on.
type Worklog struct {
	Date         time.Time     `json:"date"`
	IssueKey     string        `json:"issue_key"`
	IssueSummary string        `json:"issue_summary"`
	TimeSpent    time.Duration `json:"time_spent"`
}

func New(date time.Time, issueKey, issueSummary string, timeSpent time.Duration) Worklog {
	return Worklog{
		Date:         DateOf(date),
		IssueKey:     issueKey,
		IssueSummary: issueSummary,
		TimeSpent:    timeSpent,
	}
}

func (w Worklog) String() string {
	return fmt.Sprintf("Issue key: %s, Summary: %s, Logged time: %s",
		w.IssueKey, w.IssueSummary, FormatDuration(w.TimeSpent))
}

// UserWorklogs is the result of a single fetch for one user and date range.
// Every contained worklog lies within [StartDate, EndDate] and was authored by User.
type UserWorklogs struct {
	User      string    `json:"user"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Worklogs  []Worklog `json:"worklogs"`
}

func NewUserWorklogs(user string, start, end time.Time, worklogs []Worklog) *UserWorklogs {
	if worklogs == nil {
		worklogs = []Worklog{}
	}
	return &UserWorklogs{
		User:      user,
		StartDate: DateOf(start),
		EndDate:   DateOf(end),
		Worklogs:  worklogs,
	}
}

// FormatDuration renders d as XhYmZs, e.g. 1h2m3s or 0h0m0s.
func FormatDuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	total := int64(d / time.Second)
	s := fmt.Sprintf("%dh%dm%ds", total/3600, (total/60)%60, total%60)
	if neg {
		return "-" + s
	}
	return s
}
