package ai

import (
	"context"

	"github.com/Tomas-vilte/sonar-funnel/internal/models"
)

// IssueClassifier turns an issue bundle into a structured analysis.
type IssueClassifier interface {
	// Classify analyzes a single issue. Implementations return
	// *errors.RateLimitError when the provider throttles the request.
	Classify(ctx context.Context, bundle models.IssueBundle) (*models.Analysis, error)
}
