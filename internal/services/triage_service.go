package services

import (
	"context"
	"fmt"

	"github.com/Tomas-vilte/sonar-funnel/internal/ai"
	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
)

// issueFetcher is the part of IssueFetcher the triage run depends on.
type issueFetcher interface {
	FetchRecentIssues(ctx context.Context, daysBack int) ([]models.IssueBundle, error)
}

type TriageOptions struct {
	Days   int
	DryRun bool

	// OnFetched is called once with the number of issues found.
	OnFetched func(count int)
	// OnAnalyze is called before each issue is classified.
	OnAnalyze func(bundle models.IssueBundle)
}

// TriageReport is the outcome of one triage run.
type TriageReport struct {
	Days    int
	DryRun  bool
	Results []models.TriageResult
	Usage   models.TokenUsage
}

// Empty reports whether the window contained no issues.
func (r *TriageReport) Empty() bool {
	return len(r.Results) == 0
}

type TriageService struct {
	fetcher    issueFetcher
	classifier ai.IssueClassifier
}

func NewTriageService(fetcher issueFetcher, classifier ai.IssueClassifier) *TriageService {
	return &TriageService{
		fetcher:    fetcher,
		classifier: classifier,
	}
}

// Run fetches the recent issues and classifies them one at a time. Delivery of
// the report is left to the caller.
func (s *TriageService) Run(ctx context.Context, opts TriageOptions) (*TriageReport, error) {
	bundles, err := s.fetcher.FetchRecentIssues(ctx, opts.Days)
	if err != nil {
		return nil, err
	}

	if opts.OnFetched != nil {
		opts.OnFetched(len(bundles))
	}

	report := &TriageReport{
		Days:    opts.Days,
		DryRun:  opts.DryRun,
		Results: make([]models.TriageResult, 0, len(bundles)),
	}

	for i, bundle := range bundles {
		logger.Info(ctx, "classifying issue", "issue_id", bundle.IssueID, "count", i+1, "total", len(bundles))
		if opts.OnAnalyze != nil {
			opts.OnAnalyze(bundle)
		}

		analysis, err := s.classifier.Classify(ctx, bundle)
		if err != nil {
			logger.Error(ctx, "classification failed", err, "issue_id", bundle.IssueID)
			return nil, fmt.Errorf("classify issue %s: %w", bundle.Ref(), err)
		}

		if u := analysis.Usage; u != nil {
			report.Usage.InputTokens += u.InputTokens
			report.Usage.OutputTokens += u.OutputTokens
			report.Usage.TotalTokens += u.TotalTokens
			report.Usage.DurationMs += u.DurationMs
			report.Usage.Model = u.Model
		}

		report.Results = append(report.Results, models.TriageResult{
			Bundle:   bundle,
			Analysis: *analysis,
		})
	}

	return report, nil
}
