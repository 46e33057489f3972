package timetracker

import (
	"context"
	"fmt"
	"time"

	"github.com/Afrawles/worklogwatch/internal/worklog"
)

// Fetcher retrieves a user's worklogs for a date range.
type Fetcher interface {
	Fetch(ctx context.Context, user string, start, end time.Time) (*worklog.UserWorklogs, error)
}

// Service produces day-by-day summaries from a Fetcher.
type Service struct {
	fetcher Fetcher
}

func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// UserWorklogsSummary fetches the user's worklogs and summarizes them.
// Fetch errors are returned unchanged apart from added context.
func (s *Service) UserWorklogsSummary(ctx context.Context, user string, start, end time.Time) (UserWorklogsSummary, error) {
	uw, err := s.fetcher.Fetch(ctx, user, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching worklogs for %s: %w", user, err)
	}
	return Summarize(uw, start, end), nil
}
