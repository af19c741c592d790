package triage

import (
	"context"
	"testing"

	"github.com/Tomas-vilte/sonar-funnel/internal/config"
	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets/github"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets/pylon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIssueSource(t *testing.T) {
	ctx := context.Background()

	source, err := NewIssueSource(ctx, &config.Config{Source: config.SourcePylon, PylonAPIToken: "tok"})
	require.NoError(t, err)
	assert.IsType(t, &pylon.Client{}, source)
	assert.Equal(t, "pylon", source.Name())

	source, err = NewIssueSource(ctx, &config.Config{Source: config.SourceGitHub, GitHubToken: "ghp", GitHubRepository: "airbytehq/airbyte"})
	require.NoError(t, err)
	assert.IsType(t, &github.Client{}, source)
	assert.Equal(t, "github", source.Name())

	_, err = NewIssueSource(ctx, &config.Config{Source: config.SourceGitHub, GitHubRepository: "airbyte"})
	assert.ErrorIs(t, err, appErrors.ErrGitHubRepositoryMissing)

	_, err = NewIssueSource(ctx, &config.Config{Source: "zendesk"})
	assert.ErrorIs(t, err, appErrors.ErrUnknownSource)
}

func TestBuildDependencies(t *testing.T) {
	cfg := &config.Config{
		Source:         config.SourcePylon,
		PylonAPIToken:  "tok",
		GeminiAPIKey:   "key",
		SlackAPIToken:  "xoxb-test",
		SlackChannelID: "C123",
	}

	t.Run("dry run has no poster", func(t *testing.T) {
		deps, err := BuildDependencies(context.Background(), cfg, true)

		require.NoError(t, err)
		assert.NotNil(t, deps.Runner)
		assert.Nil(t, deps.Poster)
	})

	t.Run("execute wires the slack reporter", func(t *testing.T) {
		deps, err := BuildDependencies(context.Background(), cfg, false)

		require.NoError(t, err)
		assert.NotNil(t, deps.Runner)
		assert.NotNil(t, deps.Poster)
	})

	t.Run("missing gemini key", func(t *testing.T) {
		noKey := *cfg
		noKey.GeminiAPIKey = ""

		_, err := BuildDependencies(context.Background(), &noKey, true)

		assert.ErrorIs(t, err, appErrors.ErrGeminiAPIKeyMissing)
	})
}
