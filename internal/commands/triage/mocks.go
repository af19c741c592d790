package triage

import (
	"context"

	"github.com/Tomas-vilte/sonar-funnel/internal/services"
	"github.com/stretchr/testify/mock"
)

type (
	MockRunner struct {
		mock.Mock
	}

	MockReportPoster struct {
		mock.Mock
	}
)

func (m *MockRunner) Run(ctx context.Context, opts services.TriageOptions) (*services.TriageReport, error) {
	args := m.Called(ctx, opts)
	if r, ok := args.Get(0).(*services.TriageReport); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportPoster) PostReport(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}
