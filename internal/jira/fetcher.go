package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

// StartedLayout is the layout of a worklog's "started" timestamp,
// e.g. 2022-09-15T12:34:56.123+0300.
const StartedLayout = "2006-01-02T15:04:05.000-0700"

const (
	defaultMaxResults = 50
	maxErrorBody      = 512
)

// Getter performs an authenticated GET and returns status and body.
type Getter interface {
	Get(ctx context.Context, url string) (int, []byte, error)
}

type FetcherOptions struct {
	// Concurrency is the number of issue worklog requests in flight.
	// Values below 2 fetch issues strictly one after another.
	Concurrency int
	// MaxResults is the search page size.
	MaxResults int
	// SkipMalformed drops worklog entries with a malformed author, started
	// or timeSpentSeconds field instead of failing the whole fetch.
	SkipMalformed bool
	Logger        *slog.Logger
}

// Fetcher retrieves one user's worklogs for a date range: it searches for
// issues the user logged work on, then reads each issue's worklogs.
// A fetch is all-or-nothing.
type Fetcher struct {
	apiRoot       string
	getter        Getter
	logger        *slog.Logger
	concurrency   int
	maxResults    int
	skipMalformed bool
}

func NewFetcher(apiRoot string, getter Getter, opts FetcherOptions) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Fetcher{
		apiRoot:       strings.TrimSuffix(apiRoot, "/"),
		getter:        getter,
		logger:        logger,
		concurrency:   opts.Concurrency,
		maxResults:    maxResults,
		skipMalformed: opts.SkipMalformed,
	}
}

type issue struct {
	self    string
	key     string
	summary string
}

type searchResponse struct {
	Total  *int               `json:"total"`
	Issues *[]json.RawMessage `json:"issues"`
}

type searchIssue struct {
	Self   *string `json:"self"`
	Key    *string `json:"key"`
	Fields *struct {
		Summary *string `json:"summary"`
	} `json:"fields"`
}

type worklogsResponse struct {
	Worklogs *[]json.RawMessage `json:"worklogs"`
}

type worklogEntry struct {
	Author *struct {
		Name *string `json:"name"`
	} `json:"author"`
	Started          *string `json:"started"`
	TimeSpentSeconds *int64  `json:"timeSpentSeconds"`
}

// Fetch returns every worklog authored by user whose start day lies within
// [start, end]. It fails with *RequestError, *StatusError or *DecodeError.
func (f *Fetcher) Fetch(ctx context.Context, user string, start, end time.Time) (*worklog.UserWorklogs, error) {
	start, end = worklog.DateOf(start), worklog.DateOf(end)

	issues, err := f.searchIssues(ctx, user, start, end)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("issues found", "user", user, "count", len(issues))

	perIssue := make([][]worklog.Worklog, len(issues))
	if f.concurrency < 2 {
		for i, is := range issues {
			wls, err := f.issueWorklogs(ctx, is, user, start, end)
			if err != nil {
				return nil, err
			}
			perIssue[i] = wls
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(f.concurrency)
		for i, is := range issues {
			g.Go(func() error {
				wls, err := f.issueWorklogs(gctx, is, user, start, end)
				if err != nil {
					return err
				}
				perIssue[i] = wls
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var all []worklog.Worklog
	for _, wls := range perIssue {
		all = append(all, wls...)
	}

	f.logger.Info("worklogs fetched",
		"user", user,
		"start", worklog.FormatDate(start),
		"end", worklog.FormatDate(end),
		"issues", len(issues),
		"worklogs", len(all),
	)

	return worklog.NewUserWorklogs(user, start, end, all), nil
}

// SearchJQL is the filter selecting issues with work logged by user in [start, end].
func SearchJQL(user string, start, end time.Time) string {
	return fmt.Sprintf("worklogDate >= %s and worklogDate <= %s and worklogAuthor in (%q)",
		worklog.FormatDate(start), worklog.FormatDate(end), user)
}

func (f *Fetcher) searchURL(user string, start, end time.Time, startAt int) string {
	q := url.Values{}
	q.Set("jql", SearchJQL(user, start, end))
	q.Set("fields", "summary")
	q.Set("startAt", strconv.Itoa(startAt))
	q.Set("maxResults", strconv.Itoa(f.maxResults))
	return f.apiRoot + "/search?" + q.Encode()
}

func (f *Fetcher) searchIssues(ctx context.Context, user string, start, end time.Time) ([]issue, error) {
	var issues []issue
	startAt := 0

	for {
		u := f.searchURL(user, start, end, startAt)

		var page searchResponse
		if err := f.getJSON(ctx, u, &page); err != nil {
			return nil, err
		}
		if page.Issues == nil {
			return nil, &DecodeError{URL: u, Err: errors.New(`missing "issues" array`)}
		}

		for i, raw := range *page.Issues {
			is, err := parseIssue(raw)
			if err != nil {
				return nil, &DecodeError{URL: u, Err: fmt.Errorf("issue %d: %w", startAt+i, err)}
			}
			issues = append(issues, is)
		}

		n := len(*page.Issues)
		startAt += n
		if n == 0 || page.Total == nil || startAt >= *page.Total {
			return issues, nil
		}
	}
}

func parseIssue(raw json.RawMessage) (issue, error) {
	var si searchIssue
	if err := json.Unmarshal(raw, &si); err != nil {
		return issue{}, err
	}
	switch {
	case si.Self == nil || *si.Self == "":
		return issue{}, errors.New(`missing "self"`)
	case si.Key == nil:
		return issue{}, errors.New(`missing "key"`)
	case si.Fields == nil || si.Fields.Summary == nil:
		return issue{}, errors.New(`missing "fields.summary"`)
	}
	return issue{self: *si.Self, key: *si.Key, summary: *si.Fields.Summary}, nil
}

func (f *Fetcher) issueWorklogs(ctx context.Context, is issue, user string, start, end time.Time) ([]worklog.Worklog, error) {
	u := strings.TrimSuffix(is.self, "/") + "/worklog"

	var resp worklogsResponse
	if err := f.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Worklogs == nil {
		return nil, &DecodeError{URL: u, Err: errors.New(`missing "worklogs" array`)}
	}

	var kept []worklog.Worklog
	for i, raw := range *resp.Worklogs {
		author, day, spent, err := parseWorklogEntry(raw)
		if err != nil {
			if f.skipMalformed {
				f.logger.Warn("skipping malformed worklog",
					"issue", is.key,
					"index", i,
					"error", err,
				)
				continue
			}
			return nil, &DecodeError{URL: u, Err: fmt.Errorf("worklog %d: %w", i, err)}
		}

		if author != user || !worklog.Between(day, start, end) {
			continue
		}
		kept = append(kept, worklog.New(day, is.key, is.summary, spent))
	}

	f.logger.Debug("issue worklogs processed",
		"issue", is.key,
		"total", len(*resp.Worklogs),
		"kept", len(kept),
	)
	return kept, nil
}

func parseWorklogEntry(raw json.RawMessage) (string, time.Time, time.Duration, error) {
	var e worklogEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return "", time.Time{}, 0, err
	}
	if e.Author == nil || e.Author.Name == nil {
		return "", time.Time{}, 0, errors.New(`missing "author.name"`)
	}
	if e.Started == nil {
		return "", time.Time{}, 0, errors.New(`missing "started"`)
	}
	started, err := time.Parse(StartedLayout, *e.Started)
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("invalid \"started\": %w", err)
	}
	if e.TimeSpentSeconds == nil {
		return "", time.Time{}, 0, errors.New(`missing "timeSpentSeconds"`)
	}
	if *e.TimeSpentSeconds < 0 {
		return "", time.Time{}, 0, fmt.Errorf("negative \"timeSpentSeconds\": %d", *e.TimeSpentSeconds)
	}
	return *e.Author.Name, worklog.DateOf(started), time.Duration(*e.TimeSpentSeconds) * time.Second, nil
}

func (f *Fetcher) getJSON(ctx context.Context, u string, v any) error {
	status, body, err := f.getter.Get(ctx, u)
	if err != nil {
		return &RequestError{URL: u, Err: err}
	}
	if status < 200 || status > 299 {
		return &StatusError{URL: u, StatusCode: status, Body: truncate(string(body), maxErrorBody)}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: u, Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
