package worklog

import "time"

// DateOf truncates t to its calendar day as seen in t's own location and
// returns that day at midnight UTC. Dates produced this way are comparable
// with == and usable as map keys.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Between reports whether day lies in the closed interval [start, end].
func Between(day, start, end time.Time) bool {
	day, start, end = DateOf(day), DateOf(start), DateOf(end)
	return !day.Before(start) && !day.After(end)
}

// Days returns every calendar day from start to end inclusive, ascending.
// It returns nil when start is after end.
func Days(start, end time.Time) []time.Time {
	start, end = DateOf(start), DateOf(end)
	if start.After(end) {
		return nil
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
