package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReleasesService struct {
	mock.Mock
}

func (m *MockReleasesService) GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo)
	release, _ := args.Get(0).(*github.RepositoryRelease)
	return release, nil, args.Error(1)
}

func TestVersionChecker_LatestVersion(t *testing.T) {
	releases := new(MockReleasesService)
	releases.On("GetLatestRelease", mock.Anything, "Tomas-vilte", "sonar-funnel").
		Return(&github.RepositoryRelease{TagName: github.Ptr("v0.4.0")}, nil).Once()
	checker := NewVersionChecker("0.3.0", releases)

	latest, err := checker.LatestVersion(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "v0.4.0", latest)
	assert.True(t, checker.IsUpdateAvailable(latest))
	releases.AssertExpectations(t)
}

func TestVersionChecker_LatestVersionError(t *testing.T) {
	releases := new(MockReleasesService)
	releases.On("GetLatestRelease", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("rate limited")).Once()

	_, err := NewVersionChecker("0.3.0", releases).LatestVersion(context.Background())

	assert.ErrorContains(t, err, "rate limited")
}

func TestVersionChecker_IsUpdateAvailable(t *testing.T) {
	checker := NewVersionChecker("v0.3.0", new(MockReleasesService))

	assert.False(t, checker.IsUpdateAvailable("v0.3.0"))
	assert.False(t, checker.IsUpdateAvailable("0.2.9"))
	assert.True(t, checker.IsUpdateAvailable("0.10.0"))
	assert.False(t, checker.IsUpdateAvailable("latest"), "tags que no son semver se ignoran")
	assert.False(t, checker.IsUpdateAvailable(""))
}
