package tickets

import (
	"context"

	"github.com/Tomas-vilte/sonar-funnel/internal/models"
)

// IssueListRequest selects issues created inside [StartTime, EndTime]. Times
// are ISO-8601 UTC strings with second precision and a trailing Z.
type IssueListRequest struct {
	StartTime string
	EndTime   string
	Cursor    string
}

// MessageListRequest selects the messages of one issue.
type MessageListRequest struct {
	IssueID string
	Cursor  string
}

// IssueSource is a ticketing system exposing cursor-paginated issue and
// message listings. Implementations return *errors.RateLimitError when the
// server asks the caller to slow down.
type IssueSource interface {
	// ListIssues returns one page of issues in the requested window.
	ListIssues(ctx context.Context, req IssueListRequest) (*models.Page[models.Issue], error)
	// ListMessages returns one page of messages for an issue.
	ListMessages(ctx context.Context, req MessageListRequest) (*models.Page[models.Message], error)
	// Name identifies the source in logs and errors.
	Name() string
}
