package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets"
	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const perPage = 50

var _ tickets.IssueSource = (*Client)(nil)

// IssuesService is the part of the go-github issues API used here.
type IssuesService interface {
	ListByRepo(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error)
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
}

// Client exposes the issues of one GitHub repository as an issue source.
// Cursors are page numbers and message listings are the issue comments.
type Client struct {
	issues IssuesService
	owner  string
	repo   string
	now    func() time.Time
}

func NewClient(owner, repo, token string) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return NewClientWithService(github.NewClient(httpClient).Issues, owner, repo)
}

func NewClientWithService(issues IssuesService, owner, repo string) *Client {
	return &Client{
		issues: issues,
		owner:  owner,
		repo:   repo,
		now:    time.Now,
	}
}

// ParseRepository splits "owner/repo".
func ParseRepository(fullName string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", appErrors.ErrGitHubRepositoryMissing.WithContext("repository", fullName)
	}
	return parts[0], parts[1], nil
}

func (c *Client) Name() string {
	return "github"
}

// ListIssues lists repository issues created inside the window. Pull requests
// are skipped, so a page may come back empty while more pages remain.
func (c *Client) ListIssues(ctx context.Context, req tickets.IssueListRequest) (*models.Page[models.Issue], error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, appErrors.ErrTicketingRequest.WithError(err).WithContext("start_time", req.StartTime)
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, appErrors.ErrTicketingRequest.WithError(err).WithContext("end_time", req.EndTime)
	}
	page, err := parseCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListByRepoOptions{
		State:     "all",
		Sort:      "created",
		Direction: "asc",
		Since:     start,
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	issues, resp, err := c.issues.ListByRepo(ctx, c.owner, c.repo, opts)
	if err != nil {
		return nil, c.wrapError(err, resp, "list issues")
	}

	result := &models.Page[models.Issue]{Items: make([]models.Issue, 0, len(issues))}
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		created := issue.GetCreatedAt().Time
		if created.Before(start) || created.After(end) {
			continue
		}
		result.Items = append(result.Items, toIssue(issue))
	}
	if resp != nil && resp.NextPage != 0 {
		result.HasNextPage = true
		result.NextCursor = strconv.Itoa(resp.NextPage)
	}

	logger.Debug(ctx, "github issues page", "page", page, "page_items", len(result.Items), "has_next_page", result.HasNextPage)
	return result, nil
}

// ListMessages lists the comments of an issue. The issue id is its number.
func (c *Client) ListMessages(ctx context.Context, req tickets.MessageListRequest) (*models.Page[models.Message], error) {
	number, err := strconv.Atoi(req.IssueID)
	if err != nil {
		return nil, appErrors.ErrTicketingRequest.WithError(err).WithContext("issue_id", req.IssueID)
	}
	page, err := parseCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	comments, resp, err := c.issues.ListComments(ctx, c.owner, c.repo, number, opts)
	if err != nil {
		return nil, c.wrapError(err, resp, "list comments")
	}

	result := &models.Page[models.Message]{Items: make([]models.Message, 0, len(comments))}
	for _, comment := range comments {
		msg := models.Message{BodyHTML: comment.GetBody()}
		if user := comment.GetUser(); user != nil {
			msg.Author.Name = user.GetName()
			if msg.Author.Name == "" {
				msg.Author.Name = user.GetLogin()
			}
			msg.Author.Email = user.GetEmail()
		}
		result.Items = append(result.Items, msg)
	}
	if resp != nil && resp.NextPage != 0 {
		result.HasNextPage = true
		result.NextCursor = strconv.Itoa(resp.NextPage)
	}
	return result, nil
}

func toIssue(issue *github.Issue) models.Issue {
	number := issue.GetNumber()
	created := issue.GetCreatedAt().UTC().Format("2006-01-02T15:04:05Z")

	result := models.Issue{
		ID:        strconv.Itoa(number),
		Number:    &number,
		Title:     issue.GetTitle(),
		Link:      issue.HTMLURL,
		State:     issue.State,
		CreatedAt: &created,
		Tags:      make([]string, 0, len(issue.Labels)),
	}
	for _, label := range issue.Labels {
		if name := label.GetName(); name != "" {
			result.Tags = append(result.Tags, name)
		}
	}
	return result
}

func parseCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(cursor)
	if err != nil || page < 0 {
		return 0, appErrors.ErrTicketingRequest.
			WithError(fmt.Errorf("invalid page cursor %q", cursor))
	}
	return page, nil
}

// wrapError maps go-github errors onto the application error types.
func (c *Client) wrapError(err error, resp *github.Response, operation string) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		var retryAfter time.Duration
		if reset := rateErr.Rate.Reset.Time; !reset.IsZero() {
			if d := reset.Sub(c.now()); d > 0 {
				retryAfter = d
			}
		}
		return appErrors.NewRateLimitError(c.Name(), retryAfter, err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return appErrors.NewRateLimitError(c.Name(), abuseErr.GetRetryAfter(), err)
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return appErrors.NewRateLimitError(c.Name(), 0, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return appErrors.ErrTicketingUnauthorized.
				WithError(err).
				WithContext("operation", operation).
				WithContext("repo", fmt.Sprintf("%s/%s", c.owner, c.repo))
		}
	}

	return appErrors.ErrTicketingRequest.
		WithError(err).
		WithContext("operation", operation).
		WithContext("repo", fmt.Sprintf("%s/%s", c.owner, c.repo))
}
