package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

//go:embed "templates"
var templateFS embed.FS

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// ParseFormats validates a list of format names. Blank entries are
// ignored and duplicates collapse to their first occurrence.
func ParseFormats(names []string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)
	for _, name := range names {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		switch f {
		case "":
			continue
		case FormatJSON, FormatCSV, FormatXLSX, FormatHTML:
		case "excel":
			f = FormatXLSX
		default:
			return nil, fmt.Errorf("unknown output format %q (valid: json, csv, xlsx, html)", name)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) *Exporter {
	return &Exporter{OutputDir: outputDir}
}

// Export writes r in the given format and returns the created files.
func (e *Exporter) Export(r *Report, format Format) ([]string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	switch format {
	case FormatJSON:
		path, err := e.ExportJSON(r)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatHTML:
		path, err := e.ExportHTML(r)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatCSV:
		return NewCSVExporter(e.OutputDir).Export(r)
	case FormatXLSX:
		path, err := NewExcelExporter(e.OutputDir).Export(r)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type jsonWorklog struct {
	IssueKey     string `json:"issue_key"`
	IssueSummary string `json:"issue_summary"`
	Logged       string `json:"logged"`
	LoggedSecs   int64  `json:"logged_seconds"`
}

type jsonDay struct {
	Date       string        `json:"date"`
	Weekday    string        `json:"weekday"`
	Logged     string        `json:"logged"`
	LoggedSecs int64         `json:"logged_seconds"`
	Deviates   bool          `json:"deviates"`
	Worklogs   []jsonWorklog `json:"worklogs"`
}

type jsonIssue struct {
	Key        string `json:"key"`
	Summary    string `json:"summary"`
	Logged     string `json:"logged"`
	LoggedSecs int64  `json:"logged_seconds"`
	Worklogs   int    `json:"worklogs"`
}

type jsonReport struct {
	User          string      `json:"user"`
	Start         string      `json:"start"`
	End           string      `json:"end"`
	Baseline      string      `json:"baseline"`
	GeneratedAt   time.Time   `json:"generated_at"`
	Total         string      `json:"total"`
	TotalSecs     int64       `json:"total_seconds"`
	DeviatingDays int         `json:"deviating_days"`
	Days          []jsonDay   `json:"days"`
	Issues        []jsonIssue `json:"issues"`
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func (e *Exporter) ExportJSON(r *Report) (string, error) {
	stats := r.Statistics()
	doc := jsonReport{
		User:          r.User,
		Start:         worklog.FormatDate(r.Start),
		End:           worklog.FormatDate(r.End),
		Baseline:      worklog.FormatDuration(r.Baseline),
		GeneratedAt:   r.GeneratedAt,
		Total:         worklog.FormatDuration(stats.Total),
		TotalSecs:     seconds(stats.Total),
		DeviatingDays: stats.DeviatingDays,
		Days:          make([]jsonDay, 0, len(r.Days)),
		Issues:        make([]jsonIssue, 0, len(stats.ByIssue)),
	}
	for _, d := range r.Days {
		day := jsonDay{
			Date:       worklog.FormatDate(d.Date),
			Weekday:    d.Date.Weekday().String(),
			Logged:     worklog.FormatDuration(d.SpentTime),
			LoggedSecs: seconds(d.SpentTime),
			Deviates:   d.Deviates,
			Worklogs:   make([]jsonWorklog, 0, len(d.Worklogs)),
		}
		for _, w := range d.Worklogs {
			day.Worklogs = append(day.Worklogs, jsonWorklog{
				IssueKey:     w.IssueKey,
				IssueSummary: w.IssueSummary,
				Logged:       worklog.FormatDuration(w.TimeSpent),
				LoggedSecs:   seconds(w.TimeSpent),
			})
		}
		doc.Days = append(doc.Days, day)
	}
	for _, it := range stats.ByIssue {
		doc.Issues = append(doc.Issues, jsonIssue{
			Key:        it.Key,
			Summary:    it.Summary,
			Logged:     worklog.FormatDuration(it.SpentTime),
			LoggedSecs: seconds(it.SpentTime),
			Worklogs:   it.Worklogs,
		})
	}

	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return "", err
	}

	path := filepath.Join(e.OutputDir, baseName(r)+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON report: %w", err)
	}
	return path, nil
}

func (e *Exporter) ExportHTML(r *Report) (string, error) {
	funcMap := template.FuncMap{
		"title":    cases.Title(language.English).String,
		"duration": worklog.FormatDuration,
		"date":     worklog.FormatDate,
		"hours":    hours,
		"delta":    func(d Day) string { return signed(d.Delta(r.Baseline)) },
	}
	tmpl, err := template.New("report.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/report.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}

	path := filepath.Join(e.OutputDir, baseName(r)+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer f.Close()

	data := map[string]any{
		"Date":   r.GeneratedAt.Format("2006-01-02 15:04:05"),
		"Report": r,
		"Stats":  r.Statistics(),
	}

	if err := tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return path, nil
}

// baseName is the file name shared by every export of r, without extension.
func baseName(r *Report) string {
	user := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
			return c
		}
		return '_'
	}, r.User)
	return fmt.Sprintf("worklogs_%s_%s", user, r.GeneratedAt.Format("20060102_150405"))
}

func hours(d time.Duration) float64 {
	return float64(int64(d.Hours()*100+0.5)) / 100
}

func signed(d time.Duration) string {
	if d > 0 {
		return "+" + worklog.FormatDuration(d)
	}
	return worklog.FormatDuration(d)
}
