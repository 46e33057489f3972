// Package notify alerts the user when logged time strays from the baseline.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Afrawles/worklogwatch/internal/timetracker"
	"github.com/Afrawles/worklogwatch/internal/worklog"
)

// Notifier is told about the days that deviate from the baseline.
type Notifier interface {
	Notify(ctx context.Context, user string, deviations []timetracker.Deviation) error
}

var (
	colorRed    = lipgloss.Color("#fb4934")
	colorYellow = lipgloss.Color("#fabd2f")
	colorDim    = lipgloss.Color("#928374")

	styleTitle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleUnder = lipgloss.NewStyle().Foreground(colorRed)
	styleOver  = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
)

const bell = "\a"

// TerminalNotifier prints an alert box and rings the terminal bell.
type TerminalNotifier struct {
	out  io.Writer
	bell bool
}

// NewTerminalNotifier writes alerts to out. The bell only rings when out
// is a terminal.
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out, bell: isTerminal(out)}
}

// WithBell forces the bell on or off.
func (n *TerminalNotifier) WithBell(on bool) *TerminalNotifier {
	n.bell = on
	return n
}

func (n *TerminalNotifier) Notify(ctx context.Context, user string, deviations []timetracker.Deviation) error {
	if len(deviations) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	if n.bell {
		b.WriteString(bell)
	}
	b.WriteString(RenderAlert(user, deviations))
	b.WriteString("\n")

	if _, err := io.WriteString(n.out, b.String()); err != nil {
		return fmt.Errorf("writing alert: %w", err)
	}
	return nil
}

// RenderAlert formats deviations as a rounded box. It returns "" when
// there is nothing to report.
func RenderAlert(user string, deviations []timetracker.Deviation) string {
	if len(deviations) == 0 {
		return ""
	}
	var lines []string
	baseline := deviations[0].Baseline
	lines = append(lines, styleDim.Render(fmt.Sprintf(
		"%s: %d day(s) off the %s baseline", user, len(deviations), worklog.FormatDuration(baseline))))
	lines = append(lines, "")

	for _, d := range deviations {
		delta := d.Delta()
		style := styleUnder
		sign := ""
		if delta > 0 {
			style = styleOver
			sign = "+"
		}
		lines = append(lines, fmt.Sprintf("%s %s  logged %-9s %s",
			worklog.FormatDate(d.Date),
			d.Date.Weekday().String()[:3],
			worklog.FormatDuration(d.SpentTime),
			style.Render("("+sign+worklog.FormatDuration(delta)+")"),
		))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorRed).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	return box.Render(styleTitle.Render("WORKLOG DEVIATION") + "\n\n" + strings.Join(lines, "\n"))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
