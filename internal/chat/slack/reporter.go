// Package slack delivers triage reports to a Slack channel.
package slack

import (
	"context"
	"errors"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
	"github.com/Tomas-vilte/sonar-funnel/internal/retry"
	"github.com/slack-go/slack"
)

// messagePoster is the part of the Slack client the reporter needs.
type messagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type Reporter struct {
	client    messagePoster
	channelID string
	retry     *retry.Controller
}

// WithAPIURL points the client at another Slack API base URL, mostly for tests.
func WithAPIURL(url string) slack.Option {
	return slack.OptionAPIURL(url)
}

func NewReporter(token, channelID string, controller *retry.Controller, opts ...slack.Option) (*Reporter, error) {
	if token == "" {
		return nil, appErrors.ErrSlackTokenMissing
	}
	if channelID == "" {
		return nil, appErrors.ErrSlackChannelMissing
	}

	return &Reporter{
		client:    slack.New(token, opts...),
		channelID: channelID,
		retry:     controller,
	}, nil
}

// PostReport posts text as a single message. Rate-limited attempts are
// retried through the controller.
func (r *Reporter) PostReport(ctx context.Context, text string) error {
	log := logger.FromContext(ctx)
	log.Info("posting report to slack", "channel", r.channelID, "length", len(text))

	ts, err := retry.Do(ctx, r.retry, "chat.postMessage", func(ctx context.Context) (string, error) {
		_, ts, err := r.client.PostMessageContext(ctx, r.channelID,
			slack.MsgOptionText(text, false),
			slack.MsgOptionDisableLinkUnfurl(),
		)
		if err != nil {
			return "", mapError(err)
		}
		return ts, nil
	})
	if err != nil {
		return err
	}

	log.Debug("report posted", "channel", r.channelID, "ts", ts)
	return nil
}

func mapError(err error) error {
	var rlErr *slack.RateLimitedError
	if errors.As(err, &rlErr) {
		return appErrors.NewRateLimitError("slack", rlErr.RetryAfter, err)
	}
	return appErrors.ErrChatPost.WithError(err)
}
