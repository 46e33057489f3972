package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Jira     JiraConfig
	Check    CheckConfig
	Output   OutputConfig
	LogLevel string
}

type JiraConfig struct {
	URL           string // REST API root, e.g. https://jira.example.com/rest/api/2
	Login         string
	Password      string
	User          string // worklog author to check, defaults to Login
	Timeout       time.Duration
	Concurrency   int
	RateLimit     float64 // requests per second, 0 disables limiting
	MaxResults    int
	SkipMalformed bool
}

type CheckConfig struct {
	Baseline        time.Duration
	SkipWeekends    bool
	FailOnDeviation bool
}

type OutputConfig struct {
	Directory   string
	Format      []string // json, csv, xlsx, html
	MetricsFile string
}

// LoadFromEnv reads the configuration from the environment. Unset variables
// take their defaults; set but unparsable ones are reported together.
func LoadFromEnv() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Jira: JiraConfig{
			URL:           strings.TrimSpace(os.Getenv("JIRA_URL")),
			Login:         os.Getenv("JIRA_LOGIN"),
			Password:      os.Getenv("JIRA_PASSWORD"),
			User:          os.Getenv("JIRA_USER"),
			Timeout:       env.getDuration("JIRA_TIMEOUT", 30*time.Second),
			Concurrency:   env.getInt("JIRA_CONCURRENCY", 1),
			RateLimit:     env.getFloat("JIRA_RATE_LIMIT", 0),
			MaxResults:    env.getInt("JIRA_MAX_RESULTS", 50),
			SkipMalformed: env.getBool("JIRA_SKIP_MALFORMED", false),
		},
		Check: CheckConfig{
			Baseline:     env.getDuration("BASELINE", 8*time.Hour),
			SkipWeekends: env.getBool("SKIP_WEEKENDS", false),
		},
		Output: OutputConfig{
			Directory:   getEnvOrDefault("OUTPUT_DIR", "reports"),
			Format:      SplitList(os.Getenv("OUTPUT_FORMAT")),
			MetricsFile: os.Getenv("METRICS_FILE"),
		},
		LogLevel: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}

	if cfg.Jira.User == "" {
		cfg.Jira.User = cfg.Jira.Login
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Jira.URL == "" {
		errs = append(errs, fmt.Errorf("JIRA_URL is required"))
	} else if u, err := url.Parse(c.Jira.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("JIRA_URL must be an absolute http(s) URL, got %q", c.Jira.URL))
	}
	if c.Jira.Login == "" {
		errs = append(errs, fmt.Errorf("JIRA_LOGIN is required"))
	}
	if c.Jira.Password == "" {
		errs = append(errs, fmt.Errorf("JIRA_PASSWORD is required"))
	}
	if c.Jira.User == "" {
		errs = append(errs, fmt.Errorf("no user to check (set JIRA_USER or --user)"))
	}
	if c.Jira.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("JIRA_TIMEOUT must be positive"))
	}
	if c.Jira.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("JIRA_CONCURRENCY must be at least 1"))
	}
	if math.IsNaN(c.Jira.RateLimit) || math.IsInf(c.Jira.RateLimit, 0) {
		errs = append(errs, fmt.Errorf("JIRA_RATE_LIMIT must be a finite number"))
	} else if c.Jira.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("JIRA_RATE_LIMIT must not be negative"))
	}
	if c.Jira.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("JIRA_MAX_RESULTS must be at least 1"))
	}
	if c.Check.Baseline < 0 {
		errs = append(errs, fmt.Errorf("BASELINE must not be negative"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SplitList splits a comma-separated value, trimming whitespace and
// dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envReader parses typed variables and remembers every failure.
type envReader struct {
	errs []error
}

func (r *envReader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
}

func (r *envReader) getInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return defaultVal
	}
	return i
}

func (r *envReader) getFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		err = errors.New("not a finite number")
	}
	if err != nil {
		r.fail(key, v, err)
		return defaultVal
	}
	return f
}

func (r *envReader) getBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return defaultVal
	}
	return b
}

func (r *envReader) getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return defaultVal
	}
	return d
}
