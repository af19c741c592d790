package services

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/google/go-github/v80/github"
	"golang.org/x/mod/semver"
)

const (
	releaseOwner = "Tomas-vilte"
	releaseRepo  = "sonar-funnel"
)

// ReleasesService is the part of the go-github repositories API used to find
// the latest published release.
type ReleasesService interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

type VersionChecker struct {
	currentVersion string
	releases       ReleasesService
	timeout        time.Duration
}

func NewVersionChecker(currentVersion string, releases ReleasesService) *VersionChecker {
	if releases == nil {
		releases = github.NewClient(nil).Repositories
	}
	return &VersionChecker{
		currentVersion: currentVersion,
		releases:       releases,
		timeout:        2 * time.Second,
	}
}

// LatestVersion returns the tag of the latest published release.
func (v *VersionChecker) LatestVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	release, _, err := v.releases.GetLatestRelease(ctx, releaseOwner, releaseRepo)
	if err != nil {
		return "", appErrors.NewAppError(appErrors.TypeInternal, "could not fetch latest release", err)
	}
	return release.GetTagName(), nil
}

// IsUpdateAvailable reports whether latest is a newer semver than the running version.
func (v *VersionChecker) IsUpdateAvailable(latest string) bool {
	current := normalizeVersion(v.currentVersion)
	latest = normalizeVersion(latest)

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return false
	}
	return semver.Compare(latest, current) > 0
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}
