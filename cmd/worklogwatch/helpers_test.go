package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/worklogwatch/internal/config"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Late Wednesday evening in a zone ahead of UTC, already Wednesday afternoon in UTC.
var now = time.Date(2022, 9, 14, 23, 30, 0, 0, time.FixedZone("UTC+10", 10*3600))

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		period     string
		start, end time.Time
	}{
		{"today", date(2022, 9, 14), date(2022, 9, 14)},
		{"yesterday", date(2022, 9, 13), date(2022, 9, 13)},
		{"this-week", date(2022, 9, 12), date(2022, 9, 14)},
		{"THISWEEK", date(2022, 9, 12), date(2022, 9, 14)},
		{"last-week", date(2022, 9, 5), date(2022, 9, 11)},
		{"this-month", date(2022, 9, 1), date(2022, 9, 14)},
		{"last-month", date(2022, 8, 1), date(2022, 8, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			start, end, err := resolvePeriod(now, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}

	_, _, err := resolvePeriod(now, "all-time")
	assert.ErrorContains(t, err, "unknown period")
}

func TestResolvePeriod_SundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2022, 9, 18, 12, 0, 0, 0, time.UTC)

	start, end, err := resolvePeriod(sunday, "this-week")
	require.NoError(t, err)
	assert.Equal(t, date(2022, 9, 12), start)
	assert.Equal(t, date(2022, 9, 18), end)
}

func TestResolvePeriod_LastMonthAcrossYear(t *testing.T) {
	start, end, err := resolvePeriod(time.Date(2023, 1, 3, 8, 0, 0, 0, time.UTC), "last-month")
	require.NoError(t, err)
	assert.Equal(t, date(2022, 12, 1), start)
	assert.Equal(t, date(2022, 12, 31), end)
}

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name       string
		period     string
		start, end string
		wantStart  time.Time
		wantEnd    time.Time
		wantErr    string
	}{
		{name: "default last seven days", wantStart: date(2022, 9, 8), wantEnd: date(2022, 9, 14)},
		{name: "explicit range", start: "2022-09-10", end: "2022-09-17", wantStart: date(2022, 9, 10), wantEnd: date(2022, 9, 17)},
		{name: "start only ends today", start: "2022-09-01", wantStart: date(2022, 9, 1), wantEnd: date(2022, 9, 14)},
		{name: "end only", end: "2022-09-07", wantStart: date(2022, 9, 1), wantEnd: date(2022, 9, 7)},
		{name: "single day", start: "2022-09-10", end: "2022-09-10", wantStart: date(2022, 9, 10), wantEnd: date(2022, 9, 10)},
		{name: "period", period: "yesterday", wantStart: date(2022, 9, 13), wantEnd: date(2022, 9, 13)},
		{name: "period with dates", period: "today", start: "2022-09-10", wantErr: "cannot be combined"},
		{name: "bad start", start: "10/09/2022", wantErr: "invalid start date"},
		{name: "bad end", end: "2022-13-01", wantErr: "invalid end date"},
		{name: "start after end", start: "2022-09-18", end: "2022-09-17", wantErr: "is after end date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := resolveRange(now, tt.period, tt.start, tt.end)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{
		Jira:   config.JiraConfig{User: "env-user", Concurrency: 1},
		Check:  config.CheckConfig{Baseline: 8 * time.Hour},
		Output: config.OutputConfig{Directory: "reports", Format: []string{"json"}},
	}

	username = "cli-user"
	baseline = 6 * time.Hour
	formats = "csv,html"
	output = "/tmp/x"
	concurrency = 4
	failOnDeviation = true
	t.Cleanup(func() {
		username, formats, output = "", "", "reports"
		baseline = 8 * time.Hour
		concurrency = 1
		failOnDeviation = false
	})

	set := map[string]bool{"user": true, "format": true, "concurrency": true}
	applyOverrides(cfg, func(name string) bool { return set[name] })

	assert.Equal(t, "cli-user", cfg.Jira.User)
	assert.Equal(t, 4, cfg.Jira.Concurrency)
	assert.Equal(t, []string{"csv", "html"}, cfg.Output.Format)
	// flags left at their defaults keep the environment's values
	assert.Equal(t, 8*time.Hour, cfg.Check.Baseline)
	assert.Equal(t, "reports", cfg.Output.Directory)
	assert.True(t, cfg.Check.FailOnDeviation)
}
