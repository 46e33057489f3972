// Package worklogwatch wires the worklog check together: it fetches a
// user's worklogs, summarizes them per day, compares each day with the
// baseline and delivers the outcome as a terminal table, an alert, report
// files and metrics.
package worklogwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Afrawles/worklogwatch/internal/config"
	"github.com/Afrawles/worklogwatch/internal/jira"
	"github.com/Afrawles/worklogwatch/internal/metrics"
	"github.com/Afrawles/worklogwatch/internal/notify"
	"github.com/Afrawles/worklogwatch/internal/report"
	"github.com/Afrawles/worklogwatch/internal/timetracker"
	"github.com/Afrawles/worklogwatch/internal/worklog"
)

// ErrDeviation is returned by Deliver when FailOnDeviation is set and at
// least one day deviates from the baseline.
var ErrDeviation = errors.New("logged time deviates from baseline")

// SummaryProvider produces the day-by-day summary of a user's worklogs.
type SummaryProvider interface {
	UserWorklogsSummary(ctx context.Context, user string, start, end time.Time) (timetracker.UserWorklogsSummary, error)
}

type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	RunID     string
	Summaries SummaryProvider
	Exporter  *report.Exporter
	Formats   []report.Format
	Notifier  notify.Notifier
	Metrics   *metrics.Collector
	Registry  *prometheus.Registry
	// Out receives the terminal summary table. Nil disables it.
	Out io.Writer
	// OnExport is called after each report format has been written.
	OnExport func(format report.Format, files []string)
	Now      func() time.Time
}

// Result is the outcome of one check.
type Result struct {
	Report *report.Report
	Files  []string
}

// New builds an Application talking to the Jira instance described by cfg.
func New(cfg *config.Config) (*Application, error) {
	formats, err := report.ParseFormats(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With("run_id", runID)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	client := jira.NewClient(cfg.Jira.Login, cfg.Jira.Password,
		jira.WithTimeout(cfg.Jira.Timeout),
		jira.WithRateLimit(cfg.Jira.RateLimit),
		jira.WithObserver(collector),
	)
	fetcher := jira.NewFetcher(cfg.Jira.URL, client, jira.FetcherOptions{
		Concurrency:   cfg.Jira.Concurrency,
		MaxResults:    cfg.Jira.MaxResults,
		SkipMalformed: cfg.Jira.SkipMalformed,
		Logger:        logger,
	})

	logger.Debug("application initialized",
		"jira_url", cfg.Jira.URL,
		"concurrency", cfg.Jira.Concurrency,
		"rate_limit", cfg.Jira.RateLimit,
		"formats", cfg.Output.Format,
	)

	return &Application{
		Config:    cfg,
		Logger:    logger,
		RunID:     runID,
		Summaries: timetracker.NewService(fetcher),
		Exporter:  report.NewExporter(cfg.Output.Directory),
		Formats:   formats,
		Notifier:  notify.NewTerminalNotifier(os.Stdout),
		Metrics:   collector,
		Registry:  registry,
		Out:       os.Stdout,
		Now:       time.Now,
	}, nil
}

// Run performs a full check: Check followed by Deliver.
func (app *Application) Run(ctx context.Context, user string, start, end time.Time) (*Result, error) {
	rep, err := app.Check(ctx, user, start, end)
	if err != nil {
		return nil, err
	}
	return app.Deliver(ctx, rep)
}

// Check fetches and summarizes the user's worklogs over [start, end] and
// compares every day with the baseline.
func (app *Application) Check(ctx context.Context, user string, start, end time.Time) (*report.Report, error) {
	app.Logger.Info("checking worklogs",
		"user", user,
		"start", worklog.FormatDate(start),
		"end", worklog.FormatDate(end),
		"baseline", app.Config.Check.Baseline.String(),
	)

	summary, err := app.Summaries.UserWorklogsSummary(ctx, user, start, end)
	if err != nil {
		app.Logger.Error("failed to fetch worklogs", "error", err)
		// Request failures are already counted by the collector.
		if werr := app.writeMetricsFile(); werr != nil {
			app.Logger.Error("failed to write metrics", "file", app.Config.Output.MetricsFile, "error", werr)
		}
		return nil, err
	}

	rep := report.New(user, start, end, summary, report.Options{
		Baseline:     app.Config.Check.Baseline,
		SkipWeekends: app.Config.Check.SkipWeekends,
		GeneratedAt:  app.now(),
	})

	stats := rep.Statistics()
	app.Logger.Info("worklogs summarized",
		"days", stats.Days,
		"worklogs", stats.Worklogs,
		"total", worklog.FormatDuration(stats.Total),
		"deviating_days", stats.DeviatingDays,
	)
	return rep, nil
}

// Deliver prints the summary, raises the alert for deviating days, writes
// the configured report formats and the metrics textfile.
func (app *Application) Deliver(ctx context.Context, rep *report.Report) (*Result, error) {
	res := &Result{Report: rep}

	if app.Out != nil {
		if _, err := io.WriteString(app.Out, report.RenderSummary(rep)); err != nil {
			return nil, fmt.Errorf("writing summary: %w", err)
		}
	}

	if len(rep.Deviations) > 0 {
		for _, d := range rep.Deviations {
			app.Logger.Warn("day deviates from baseline",
				"date", worklog.FormatDate(d.Date),
				"logged", worklog.FormatDuration(d.SpentTime),
				"delta", worklog.FormatDuration(d.Delta()),
			)
		}
		if app.Notifier != nil {
			if err := app.Notifier.Notify(ctx, rep.User, rep.Deviations); err != nil {
				app.Logger.Error("failed to notify", "error", err)
			}
		}
	}

	var exportErrs []error
	for _, format := range app.Formats {
		files, err := app.Exporter.Export(rep, format)
		if err != nil {
			app.Logger.Error("failed to export report", "format", format, "error", err)
			exportErrs = append(exportErrs, fmt.Errorf("exporting %s: %w", format, err))
			continue
		}
		app.Logger.Info("report exported", "format", format, "files", files)
		res.Files = append(res.Files, files...)
		if app.OnExport != nil {
			app.OnExport(format, files)
		}
	}

	if err := app.writeMetrics(rep); err != nil {
		app.Logger.Error("failed to write metrics", "file", app.Config.Output.MetricsFile, "error", err)
		exportErrs = append(exportErrs, err)
	}

	if err := errors.Join(exportErrs...); err != nil {
		return res, err
	}

	if app.Config.Check.FailOnDeviation && len(rep.Deviations) > 0 {
		return res, fmt.Errorf("%w: %d day(s)", ErrDeviation, len(rep.Deviations))
	}

	app.Logger.Info("check complete", "files", len(res.Files))
	return res, nil
}

func (app *Application) writeMetrics(rep *report.Report) error {
	if app.Metrics == nil {
		return nil
	}
	stats := rep.Statistics()
	app.Metrics.RecordCheck(stats.Worklogs, stats.Total, stats.DeviatingDays, app.now())
	return app.writeMetricsFile()
}

// writeMetricsFile dumps the registry to the configured textfile, if any.
func (app *Application) writeMetricsFile() error {
	if app.Config.Output.MetricsFile == "" || app.Registry == nil {
		return nil
	}
	if err := metrics.WriteTextfile(app.Config.Output.MetricsFile, app.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func (app *Application) now() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return time.Now()
}
