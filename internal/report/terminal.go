package report

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorDim    = lipgloss.Color("#928374")
	ColorHeader = lipgloss.Color("#fe8019")

	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleBold   = lipgloss.NewStyle().Bold(true)
)

// RenderTable renders rows as aligned columns under a styled header.
// Widths are measured on visible characters so styled cells line up.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &StyleHeader)

	total := 0
	for _, w := range widths {
		total += w
	}
	total += colGap * (cols - 1)
	b.WriteString(StyleDim.Render(strings.Repeat("─", total)))
	b.WriteString("\n")

	for _, row := range rows {
		writeRow(row, nil)
	}

	return b.String()
}

// RenderSummary renders the report as a day-by-day terminal table
// followed by a totals line.
func RenderSummary(r *Report) string {
	headers := []string{"DATE", "DAY", "LOGGED", "DELTA", "WORKLOGS"}
	rows := make([][]string, 0, len(r.Days))

	for _, d := range r.Days {
		logged := worklog.FormatDuration(d.SpentTime)
		delta := d.Delta(r.Baseline)
		deltaText := signed(delta)

		switch {
		case !d.Deviates:
			logged = StyleGreen.Render(logged)
			deltaText = StyleDim.Render(deltaText)
		case delta < 0:
			logged = StyleRed.Render(logged)
			deltaText = StyleRed.Render(deltaText)
		default:
			logged = StyleYellow.Render(logged)
			deltaText = StyleYellow.Render(deltaText)
		}

		rows = append(rows, []string{
			worklog.FormatDate(d.Date),
			d.Date.Weekday().String()[:3],
			logged,
			deltaText,
			strconv.Itoa(len(d.Worklogs)),
		})
	}

	stats := r.Statistics()

	var b strings.Builder
	b.WriteString(StyleBold.Render(r.User))
	b.WriteString(StyleDim.Render(" " + worklog.FormatDate(r.Start) + " → " + worklog.FormatDate(r.End)))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(headers, rows))
	b.WriteString("\n")
	b.WriteString("Total " + StyleBold.Render(worklog.FormatDuration(stats.Total)))
	b.WriteString(StyleDim.Render("  avg " + worklog.FormatDuration(stats.AveragePerDay) + "/day"))
	if stats.DeviatingDays > 0 {
		b.WriteString("  " + StyleRed.Render(strconv.Itoa(stats.DeviatingDays)+" deviating"))
	} else {
		b.WriteString("  " + StyleGreen.Render("on baseline"))
	}
	b.WriteString("\n")

	return b.String()
}
