package services

import (
	"context"

	"github.com/Tomas-vilte/sonar-funnel/internal/models"
	"github.com/Tomas-vilte/sonar-funnel/internal/tickets"
	"github.com/stretchr/testify/mock"
)

type (
	MockIssueSource struct {
		mock.Mock
	}

	MockClassifier struct {
		mock.Mock
	}

	MockIssueFetcher struct {
		mock.Mock
	}
)

func (m *MockIssueSource) ListIssues(ctx context.Context, req tickets.IssueListRequest) (*models.Page[models.Issue], error) {
	args := m.Called(ctx, req)
	if page, ok := args.Get(0).(*models.Page[models.Issue]); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIssueSource) ListMessages(ctx context.Context, req tickets.MessageListRequest) (*models.Page[models.Message], error) {
	args := m.Called(ctx, req)
	if page, ok := args.Get(0).(*models.Page[models.Message]); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIssueSource) Name() string {
	return "mock"
}

func (m *MockClassifier) Classify(ctx context.Context, bundle models.IssueBundle) (*models.Analysis, error) {
	args := m.Called(ctx, bundle)
	if analysis, ok := args.Get(0).(*models.Analysis); ok {
		return analysis, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIssueFetcher) FetchRecentIssues(ctx context.Context, daysBack int) ([]models.IssueBundle, error) {
	args := m.Called(ctx, daysBack)
	if bundles, ok := args.Get(0).([]models.IssueBundle); ok {
		return bundles, args.Error(1)
	}
	return nil, args.Error(1)
}
