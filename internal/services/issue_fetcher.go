package services

import (
	"context"
	"fmt"
	"time"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
	"github.com/Tomas-vilte/sonar-funnel/internal/retry"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets"
)

// windowLayout is the timestamp format the ticketing APIs expect.
const windowLayout = "2006-01-02T15:04:05Z"

// IssueFetcher collects the issues created in the last N days together with
// their messages.
type IssueFetcher struct {
	source   tickets.IssueSource
	retry    *retry.Controller
	messages *MessageFetcher
	now      func() time.Time
}

type IssueFetcherOption func(*IssueFetcher)

// WithNow sets the clock used to compute the lookback window.
func WithNow(now func() time.Time) IssueFetcherOption {
	return func(f *IssueFetcher) {
		f.now = now
	}
}

func NewIssueFetcher(source tickets.IssueSource, controller *retry.Controller, opts ...IssueFetcherOption) *IssueFetcher {
	f := &IssueFetcher{
		source:   source,
		retry:    controller,
		messages: NewMessageFetcher(source, controller),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchRecentIssues returns one bundle per issue created in the last daysBack
// days, in the order the source lists them. The retry deadline anchor is reset
// at the start, so the whole fetch shares one hour of rate-limit budget. Any
// error aborts the fetch and no partial result is returned.
func (f *IssueFetcher) FetchRecentIssues(ctx context.Context, daysBack int) ([]models.IssueBundle, error) {
	if daysBack < 0 {
		return nil, appErrors.ErrInvalidDays.WithContext("days", fmt.Sprint(daysBack))
	}

	f.retry.Reset()

	end := f.now().UTC()
	start := end.Add(-time.Duration(daysBack) * 24 * time.Hour)
	startTime := start.Format(windowLayout)
	endTime := end.Format(windowLayout)

	ctx = logger.With(ctx, "source", f.source.Name())
	logger.Info(ctx, "fetching issues", "start_time", startTime, "end_time", endTime)

	issues, err := f.listIssues(ctx, startTime, endTime)
	if err != nil {
		return nil, err
	}

	bundles := make([]models.IssueBundle, 0, len(issues))
	for _, issue := range issues {
		text, err := f.messages.FetchMessages(ctx, issue.ID)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, newBundle(issue, text))
	}

	logger.Info(ctx, "issues fetched", "count", len(bundles), "elapsed", f.retry.Elapsed())
	return bundles, nil
}

// listIssues follows the cursor chain until the source reports no further
// pages. Messages are only fetched once the whole listing is done.
func (f *IssueFetcher) listIssues(ctx context.Context, startTime, endTime string) ([]models.Issue, error) {
	issues := make([]models.Issue, 0)
	cursor := ""

	for {
		req := tickets.IssueListRequest{StartTime: startTime, EndTime: endTime, Cursor: cursor}
		page, err := retry.Do(ctx, f.retry, "issues.list", func(ctx context.Context) (*models.Page[models.Issue], error) {
			return f.source.ListIssues(ctx, req)
		})
		if err != nil {
			return nil, fmt.Errorf("list issues: %w", err)
		}

		logger.Debug(ctx, "issues page", "page_items", len(page.Items), "has_next_page", page.HasNextPage)
		issues = append(issues, page.Items...)

		if !page.HasNextPage {
			return issues, nil
		}
		cursor = page.NextCursor
	}
}

func newBundle(issue models.Issue, messageText string) models.IssueBundle {
	tags := make([]string, 0, len(issue.Tags))
	for _, tag := range issue.Tags {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return models.IssueBundle{
		IssueID:     issue.ID,
		IssueNumber: issue.Number,
		Title:       issue.Title,
		Link:        issue.Link,
		State:       issue.State,
		CreatedAt:   issue.CreatedAt,
		Tags:        tags,
		MessageText: messageText,
	}
}
