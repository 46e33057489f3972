package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

type CSVExporter struct {
	OutputDir string
}

func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir}
}

// Export writes a daily summary CSV and a worklog detail CSV.
func (e *CSVExporter) Export(r *Report) ([]string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	daily := filepath.Join(e.OutputDir, baseName(r)+"_daily.csv")
	if err := writeCSV(daily, dailyRows(r)); err != nil {
		return nil, fmt.Errorf("failed to export daily summary: %w", err)
	}

	detail := filepath.Join(e.OutputDir, baseName(r)+"_worklogs.csv")
	if err := writeCSV(detail, worklogRows(r)); err != nil {
		return nil, fmt.Errorf("failed to export worklog list: %w", err)
	}

	return []string{daily, detail}, nil
}

func dailyRows(r *Report) [][]string {
	rows := [][]string{{
		"Date",
		"Weekday",
		"Logged",
		"Logged Seconds",
		"Delta",
		"Worklogs",
		"Deviates",
	}}

	for _, d := range r.Days {
		rows = append(rows, []string{
			worklog.FormatDate(d.Date),
			d.Date.Weekday().String(),
			worklog.FormatDuration(d.SpentTime),
			strconv.FormatInt(seconds(d.SpentTime), 10),
			signed(d.Delta(r.Baseline)),
			strconv.Itoa(len(d.Worklogs)),
			strconv.FormatBool(d.Deviates),
		})
	}
	return rows
}

func worklogRows(r *Report) [][]string {
	rows := [][]string{{
		"#",
		"Date",
		"Issue Key",
		"Issue Summary",
		"Logged",
		"Logged Seconds",
	}}

	for i, w := range r.Worklogs() {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			worklog.FormatDate(w.Date),
			w.IssueKey,
			w.IssueSummary,
			worklog.FormatDuration(w.TimeSpent),
			strconv.FormatInt(seconds(w.TimeSpent), 10),
		})
	}
	return rows
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}
