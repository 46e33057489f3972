package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

const (
	dashboardSheet = "Dashboard"
	worklogsSheet  = "Worklogs"
	issuesSheet    = "Issues"
)

type ExcelExporter struct {
	OutputDir string
}

func NewExcelExporter(outputDir string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir}
}

func (e *ExcelExporter) Export(r *Report) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(e.OutputDir, baseName(r)+".xlsx")

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return "", fmt.Errorf("failed to create styles: %w", err)
	}

	if err := f.SetSheetName("Sheet1", dashboardSheet); err != nil {
		return "", fmt.Errorf("failed to create dashboard: %w", err)
	}
	if err := e.createDashboardSheet(f, styles, r); err != nil {
		return "", fmt.Errorf("failed to create dashboard: %w", err)
	}
	if err := e.createWorklogsSheet(f, styles, r); err != nil {
		return "", fmt.Errorf("failed to create worklogs sheet: %w", err)
	}
	if err := e.createIssuesSheet(f, styles, r); err != nil {
		return "", fmt.Errorf("failed to create issues sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(filename); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}
	return filename, nil
}

type sheetStyles struct {
	header    int
	total     int
	deviating int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}

	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return s, err
	}
	s.total, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#B4C7E7"}, Pattern: 1},
		Font:   &excelize.Font{Bold: true},
		Border: border,
	})
	if err != nil {
		return s, err
	}
	s.deviating, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
		Font: &excelize.Font{Color: "#9C0006"},
	})
	return s, err
}

// sheetWriter collects the first error of a run of cell writes.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, value any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cellName(col, row), value)
}

func (w *sheetWriter) style(fromCol, toCol, row, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, cellName(fromCol, row), cellName(toCol, row), style)
}

func (w *sheetWriter) header(row int, headers []string, style int) {
	for col, h := range headers {
		w.set(col+1, row, h)
	}
	w.style(1, len(headers), row, style)
}

func (e *ExcelExporter) createDashboardSheet(f *excelize.File, styles sheetStyles, r *Report) error {
	w := &sheetWriter{f: f, sheet: dashboardSheet}
	stats := r.Statistics()

	w.set(1, 1, "User:")
	w.set(2, 1, r.User)
	w.set(1, 2, "Date From:")
	w.set(2, 2, worklog.FormatDate(r.Start))
	w.set(1, 3, "Date to:")
	w.set(2, 3, worklog.FormatDate(r.End))
	w.set(1, 4, "Baseline:")
	w.set(2, 4, worklog.FormatDuration(r.Baseline))

	headers := []string{"Date", "Weekday", "Logged", "Hours", "Delta", "Worklogs", "Status"}
	row := 6
	w.header(row, headers, styles.header)
	row++

	for _, d := range r.Days {
		status := "ok"
		if d.Deviates {
			status = "deviates"
		}
		w.set(1, row, worklog.FormatDate(d.Date))
		w.set(2, row, d.Date.Weekday().String())
		w.set(3, row, worklog.FormatDuration(d.SpentTime))
		w.set(4, row, hours(d.SpentTime))
		w.set(5, row, signed(d.Delta(r.Baseline)))
		w.set(6, row, len(d.Worklogs))
		w.set(7, row, status)
		if d.Deviates {
			w.style(1, len(headers), row, styles.deviating)
		}
		row++
	}

	w.set(1, row, "Total")
	w.set(3, row, worklog.FormatDuration(stats.Total))
	w.set(4, row, hours(stats.Total))
	w.set(6, row, stats.Worklogs)
	w.set(7, row, fmt.Sprintf("%d deviating", stats.DeviatingDays))
	w.style(1, len(headers), row, styles.total)
	if w.err != nil {
		return w.err
	}

	if err := f.SetColWidth(dashboardSheet, "A", "A", 14); err != nil {
		return err
	}
	return f.SetColWidth(dashboardSheet, "B", columnLetter(len(headers)), 13)
}

func (e *ExcelExporter) createWorklogsSheet(f *excelize.File, styles sheetStyles, r *Report) error {
	if _, err := f.NewSheet(worklogsSheet); err != nil {
		return err
	}
	w := &sheetWriter{f: f, sheet: worklogsSheet}

	w.header(1, []string{"#", "Date", "Issue Key", "Issue Summary", "Logged", "Hours"}, styles.header)
	for i, wl := range r.Worklogs() {
		row := i + 2
		w.set(1, row, i+1)
		w.set(2, row, worklog.FormatDate(wl.Date))
		w.set(3, row, wl.IssueKey)
		w.set(4, row, wl.IssueSummary)
		w.set(5, row, worklog.FormatDuration(wl.TimeSpent))
		w.set(6, row, hours(wl.TimeSpent))
	}
	if w.err != nil {
		return w.err
	}

	for col, width := range map[string]float64{"A": 5, "B": 12, "C": 14, "D": 50, "E": 12, "F": 8} {
		if err := f.SetColWidth(worklogsSheet, col, col, width); err != nil {
			return err
		}
	}

	return f.SetPanes(worklogsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (e *ExcelExporter) createIssuesSheet(f *excelize.File, styles sheetStyles, r *Report) error {
	if _, err := f.NewSheet(issuesSheet); err != nil {
		return err
	}
	w := &sheetWriter{f: f, sheet: issuesSheet}

	w.header(1, []string{"Issue Key", "Issue Summary", "Logged", "Hours", "Worklogs"}, styles.header)
	for i, it := range r.Statistics().ByIssue {
		row := i + 2
		w.set(1, row, it.Key)
		w.set(2, row, it.Summary)
		w.set(3, row, worklog.FormatDuration(it.SpentTime))
		w.set(4, row, hours(it.SpentTime))
		w.set(5, row, it.Worklogs)
	}
	if w.err != nil {
		return w.err
	}

	if err := f.SetColWidth(issuesSheet, "A", "A", 14); err != nil {
		return err
	}
	return f.SetColWidth(issuesSheet, "B", "B", 50)
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", columnLetter(col), row)
}

func columnLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
