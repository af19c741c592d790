package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
	"github.com/Tomas-vilte/sonar-funnel/internal/retry"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets"
)

// MessageFetcher flattens every message of an issue into attributed plain text.
type MessageFetcher struct {
	source tickets.IssueSource
	retry  *retry.Controller
}

func NewMessageFetcher(source tickets.IssueSource, controller *retry.Controller) *MessageFetcher {
	return &MessageFetcher{
		source: source,
		retry:  controller,
	}
}

// FetchMessages pages through the messages of issueID and returns them as
// "<author>: <text>" entries separated by a blank line. Messages whose text is
// empty once stripped are skipped.
func (f *MessageFetcher) FetchMessages(ctx context.Context, issueID string) (string, error) {
	var parts []string
	cursor := ""

	for {
		req := tickets.MessageListRequest{IssueID: issueID, Cursor: cursor}
		page, err := retry.Do(ctx, f.retry, "messages.list", func(ctx context.Context) (*models.Page[models.Message], error) {
			return f.source.ListMessages(ctx, req)
		})
		if err != nil {
			return "", fmt.Errorf("fetch messages for issue %s: %w", issueID, err)
		}

		for _, msg := range page.Items {
			text := StripHTML(msg.BodyHTML)
			if text == "" {
				continue
			}
			parts = append(parts, msg.Author.DisplayName()+": "+text)
		}

		if !page.HasNextPage {
			break
		}
		cursor = page.NextCursor
	}

	logger.Debug(ctx, "messages fetched", "issue_id", issueID, "count", len(parts))
	return strings.Join(parts, "\n\n"), nil
}
