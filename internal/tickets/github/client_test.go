package github

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets"
	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIssuesService struct {
	mock.Mock
}

func (m *MockIssuesService) ListByRepo(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error) {
	args := m.Called(ctx, owner, repo, opts)
	issues, _ := args.Get(0).([]*github.Issue)
	resp, _ := args.Get(1).(*github.Response)
	return issues, resp, args.Error(2)
}

func (m *MockIssuesService) ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	comments, _ := args.Get(0).([]*github.IssueComment)
	resp, _ := args.Get(1).(*github.Response)
	return comments, resp, args.Error(2)
}

var (
	windowStart = time.Date(2026, 10, 11, 12, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
)

func windowRequest(cursor string) tickets.IssueListRequest {
	return tickets.IssueListRequest{
		StartTime: windowStart.Format(time.RFC3339),
		EndTime:   windowEnd.Format(time.RFC3339),
		Cursor:    cursor,
	}
}

func ghResponse(status, nextPage int) *github.Response {
	return &github.Response{Response: &http.Response{StatusCode: status}, NextPage: nextPage}
}

func TestListIssues(t *testing.T) {
	mockService := new(MockIssuesService)
	client := NewClientWithService(mockService, "airbytehq", "airbyte")

	issues := []*github.Issue{
		{
			Number:    github.Ptr(7),
			Title:     github.Ptr("Snowflake destination drops rows"),
			HTMLURL:   github.Ptr("https://github.com/airbytehq/airbyte/issues/7"),
			State:     github.Ptr("open"),
			CreatedAt: &github.Timestamp{Time: windowStart.Add(time.Hour)},
			Labels:    []*github.Label{{Name: github.Ptr("area/connectors")}, {Name: github.Ptr("")}},
		},
		{
			Number:           github.Ptr(8),
			Title:            github.Ptr("Bump deps"),
			CreatedAt:        &github.Timestamp{Time: windowStart.Add(2 * time.Hour)},
			PullRequestLinks: &github.PullRequestLinks{URL: github.Ptr("https://api.github.com/pulls/8")},
		},
		{
			Number:    github.Ptr(3),
			Title:     github.Ptr("Old issue updated recently"),
			CreatedAt: &github.Timestamp{Time: windowStart.Add(-48 * time.Hour)},
		},
	}

	mockService.On("ListByRepo", mock.Anything, "airbytehq", "airbyte", mock.MatchedBy(func(opts *github.IssueListByRepoOptions) bool {
		return opts.Page == 2 && opts.State == "all" && opts.Since.Equal(windowStart) && opts.PerPage == perPage
	})).Return(issues, ghResponse(http.StatusOK, 3), nil).Once()

	page, err := client.ListIssues(context.Background(), windowRequest("2"))

	require.NoError(t, err)
	require.Len(t, page.Items, 1, "PRs e issues fuera de la ventana se descartan")
	issue := page.Items[0]
	assert.Equal(t, "7", issue.ID)
	assert.Equal(t, 7, *issue.Number)
	assert.Equal(t, "Snowflake destination drops rows", issue.Title)
	assert.Equal(t, "https://github.com/airbytehq/airbyte/issues/7", *issue.Link)
	assert.Equal(t, "open", *issue.State)
	assert.Equal(t, "2026-10-11T13:00:00Z", *issue.CreatedAt)
	assert.Equal(t, []string{"area/connectors"}, issue.Tags)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "3", page.NextCursor)
	mockService.AssertExpectations(t)
}

func TestListIssues_LastPage(t *testing.T) {
	mockService := new(MockIssuesService)
	client := NewClientWithService(mockService, "o", "r")

	mockService.On("ListByRepo", mock.Anything, "o", "r", mock.Anything).
		Return([]*github.Issue{}, ghResponse(http.StatusOK, 0), nil).Once()

	page, err := client.ListIssues(context.Background(), windowRequest(""))

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNextPage)
	assert.Empty(t, page.NextCursor)
}

func TestListIssues_InvalidInput(t *testing.T) {
	client := NewClientWithService(new(MockIssuesService), "o", "r")

	_, err := client.ListIssues(context.Background(), tickets.IssueListRequest{StartTime: "yesterday", EndTime: "now"})
	assert.ErrorIs(t, err, appErrors.ErrTicketingRequest)

	_, err = client.ListIssues(context.Background(), windowRequest("abc"))
	assert.ErrorIs(t, err, appErrors.ErrTicketingRequest)
}

func TestListMessages(t *testing.T) {
	mockService := new(MockIssuesService)
	client := NewClientWithService(mockService, "o", "r")

	comments := []*github.IssueComment{
		{Body: github.Ptr("It breaks on sync"), User: &github.User{Login: github.Ptr("alice"), Name: github.Ptr("Alice")}},
		{Body: github.Ptr("Same here"), User: &github.User{Login: github.Ptr("bob")}},
		{Body: github.Ptr("ghost comment")},
	}
	mockService.On("ListComments", mock.Anything, "o", "r", 7, mock.MatchedBy(func(opts *github.IssueListCommentsOptions) bool {
		return opts.Page == 0
	})).Return(comments, ghResponse(http.StatusOK, 0), nil).Once()

	page, err := client.ListMessages(context.Background(), tickets.MessageListRequest{IssueID: "7"})

	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Alice", page.Items[0].Author.DisplayName())
	assert.Equal(t, "bob", page.Items[1].Author.DisplayName())
	assert.Equal(t, "Unknown", page.Items[2].Author.DisplayName())
	assert.Equal(t, "It breaks on sync", page.Items[0].BodyHTML)
	assert.False(t, page.HasNextPage)
}

func TestListMessages_InvalidIssueID(t *testing.T) {
	client := NewClientWithService(new(MockIssuesService), "o", "r")

	_, err := client.ListMessages(context.Background(), tickets.MessageListRequest{IssueID: "iss_1"})

	assert.ErrorIs(t, err, appErrors.ErrTicketingRequest)
}

func TestWrapError(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		err        error
		resp       *github.Response
		rateLimit  bool
		retryAfter time.Duration
		sentinel   *appErrors.AppError
	}{
		{
			name:       "primary rate limit uses the reset time",
			err:        &github.RateLimitError{Rate: github.Rate{Reset: github.Timestamp{Time: now.Add(45 * time.Second)}}},
			rateLimit:  true,
			retryAfter: 45 * time.Second,
		},
		{
			name:       "secondary rate limit uses retry after",
			err:        &github.AbuseRateLimitError{RetryAfter: github.Ptr(20 * time.Second)},
			rateLimit:  true,
			retryAfter: 20 * time.Second,
		},
		{
			name:      "plain 429",
			err:       errors.New("too many requests"),
			resp:      ghResponse(http.StatusTooManyRequests, 0),
			rateLimit: true,
		},
		{
			name:     "unauthorized",
			err:      errors.New("bad credentials"),
			resp:     ghResponse(http.StatusUnauthorized, 0),
			sentinel: appErrors.ErrTicketingUnauthorized,
		},
		{
			name:     "anything else",
			err:      errors.New("boom"),
			sentinel: appErrors.ErrTicketingRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClientWithService(new(MockIssuesService), "o", "r")
			client.now = func() time.Time { return now }

			err := client.wrapError(tt.err, tt.resp, "list issues")

			var rlErr *appErrors.RateLimitError
			if tt.rateLimit {
				require.ErrorAs(t, err, &rlErr)
				assert.Equal(t, tt.retryAfter, rlErr.RetryAfter)
				return
			}
			assert.False(t, errors.As(err, &rlErr))
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestParseRepository(t *testing.T) {
	owner, repo, err := ParseRepository("airbytehq/airbyte")
	require.NoError(t, err)
	assert.Equal(t, "airbytehq", owner)
	assert.Equal(t, "airbyte", repo)

	for _, bad := range []string{"", "airbyte", "a/b/c", "/repo", "owner/"} {
		_, _, err := ParseRepository(bad)
		assert.ErrorIs(t, err, appErrors.ErrGitHubRepositoryMissing, bad)
	}
}
