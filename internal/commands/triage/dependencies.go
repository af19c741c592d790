package triage

import (
	"context"

	"github.com/Tomas-vilte/sonar-funnel/internal/ai/gemini"
	"github.com/Tomas-vilte/sonar-funnel/internal/chat/slack"
	"github.com/Tomas-vilte/sonar-funnel/internal/config"
	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/retry"
	"github.com/Tomas-vilte/sonar-funnel/internal/services"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets/github"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets/pylon"
)

// NewIssueSource builds the ticketing client selected by cfg.Source.
func NewIssueSource(ctx context.Context, cfg *config.Config) (tickets.IssueSource, error) {
	switch cfg.Source {
	case config.SourcePylon:
		return pylon.NewClientWithToken(ctx, cfg.PylonBaseURL, cfg.PylonAPIToken), nil
	case config.SourceGitHub:
		owner, repo, err := github.ParseRepository(cfg.GitHubRepository)
		if err != nil {
			return nil, err
		}
		return github.NewClient(owner, repo, cfg.GitHubToken), nil
	default:
		return nil, appErrors.ErrUnknownSource.WithContext("source", cfg.Source)
	}
}

// BuildDependencies wires the production collaborators. A single retry
// controller is shared by the fetch, the classifier and the Slack post.
func BuildDependencies(ctx context.Context, cfg *config.Config, dryRun bool) (*Dependencies, error) {
	controller := retry.NewController()

	source, err := NewIssueSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	classifier, err := gemini.NewClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Language, controller)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Runner: services.NewTriageService(services.NewIssueFetcher(source, controller), classifier),
	}

	if !dryRun {
		reporter, err := slack.NewReporter(cfg.SlackAPIToken, cfg.SlackChannelID, controller)
		if err != nil {
			return nil, err
		}
		deps.Poster = reporter
	}

	return deps, nil
}
