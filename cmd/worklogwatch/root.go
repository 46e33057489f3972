package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Afrawles/worklogwatch/internal/config"
	"github.com/Afrawles/worklogwatch/internal/report"
	"github.com/Afrawles/worklogwatch/internal/worklog"
	"github.com/Afrawles/worklogwatch/internal/worklogwatch"
)

var (
	username        string
	startDate       string
	endDate         string
	periodFlag      string
	baseline        time.Duration
	formats         string
	output          string
	metricsFile     string
	skipWeekends    bool
	failOnDeviation bool
	skipMalformed   bool
	concurrency     int
)

var rootCmd = &cobra.Command{
	Use:   "worklogwatch",
	Short: "Check the time a user logged in Jira against a daily baseline",
	Long: `worklogwatch fetches a user's Jira worklogs for a date range, totals them
per calendar day and flags every day whose logged time differs from the
expected baseline.

Connection settings come from JIRA_URL, JIRA_LOGIN and JIRA_PASSWORD.
Flags override the matching environment variables.`,
	Example: `  worklogwatch --user jane.doe --period last-week
  worklogwatch --start 2022-09-10 --end 2022-09-17 --format json,xlsx
  worklogwatch --period this-month --skip-weekends --fail-on-deviation`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, worklogwatch.ErrDeviation) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&username, "user", "u", "", "Worklog author to check (default $JIRA_USER or $JIRA_LOGIN)")
	rootCmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date, inclusive (YYYY-MM-DD)")
	rootCmd.Flags().StringVarP(&endDate, "end", "e", "", "End date, inclusive (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&periodFlag, "period", "", "Period: today, yesterday, this-week, last-week, this-month, last-month")
	rootCmd.Flags().DurationVar(&baseline, "baseline", 8*time.Hour, "Expected logged time per day ($BASELINE)")
	rootCmd.Flags().StringVarP(&formats, "format", "f", "", "Comma-separated report formats: json, csv, xlsx, html ($OUTPUT_FORMAT)")
	rootCmd.Flags().StringVarP(&output, "output", "o", "reports", "Output directory ($OUTPUT_DIR)")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile ($METRICS_FILE)")
	rootCmd.Flags().BoolVar(&skipWeekends, "skip-weekends", false, "Do not flag Saturdays and Sundays ($SKIP_WEEKENDS)")
	rootCmd.Flags().BoolVar(&failOnDeviation, "fail-on-deviation", false, "Exit with status 2 when any day deviates")
	rootCmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "Skip malformed worklog records instead of failing ($JIRA_SKIP_MALFORMED)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 1, "Issues fetched in parallel ($JIRA_CONCURRENCY)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	applyOverrides(cfg, cmd.Flags().Changed)

	start, end, err := resolveRange(time.Now(), periodFlag, startDate, endDate)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := worklogwatch.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Checking worklogs of %s (%s to %s)\n",
		cfg.Jira.User, worklog.FormatDate(start), worklog.FormatDate(end))

	bar := newSpinner("Fetching worklogs")
	rep, err := app.Check(ctx, cfg.Jira.User, start, end)
	finishBar(bar)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	var exportBar *progressbar.ProgressBar
	if len(app.Formats) > 0 {
		exportBar = newProgressBar(len(app.Formats), "Exporting")
		app.OnExport = func(report.Format, []string) {
			_ = exportBar.Add(1)
		}
	}

	res, err := app.Deliver(ctx, rep)
	finishBar(exportBar)
	if res != nil && len(res.Files) > 0 {
		fmt.Fprintf(os.Stderr, "\nReports saved to %s/\n", cfg.Output.Directory)
		for _, f := range res.Files {
			fmt.Fprintf(os.Stderr, "  -> %s\n", f)
		}
	}
	return err
}

// applyOverrides copies every flag the user set onto cfg.
func applyOverrides(cfg *config.Config, changed func(name string) bool) {
	if changed("user") {
		cfg.Jira.User = username
	}
	if changed("baseline") {
		cfg.Check.Baseline = baseline
	}
	if changed("format") {
		cfg.Output.Format = config.SplitList(formats)
	}
	if changed("output") {
		cfg.Output.Directory = output
	}
	if changed("metrics-file") {
		cfg.Output.MetricsFile = metricsFile
	}
	if changed("skip-weekends") {
		cfg.Check.SkipWeekends = skipWeekends
	}
	if changed("skip-malformed") {
		cfg.Jira.SkipMalformed = skipMalformed
	}
	if changed("concurrency") {
		cfg.Jira.Concurrency = concurrency
	}
	cfg.Check.FailOnDeviation = failOnDeviation
}

func newSpinner(description string) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	_ = bar.RenderBlank()
	return bar
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
	)
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
