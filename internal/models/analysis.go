package models

const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Analysis is the structured classification of one issue.
type Analysis struct {
	ProblemSummary             string  `json:"problem_summary" yaml:"problem_summary"`
	Severity                   string  `json:"severity" yaml:"severity"`
	ImpactedArea               string  `json:"impacted_area" yaml:"impacted_area"`
	AffectedConnectorOrService *string `json:"affected_connector_or_service,omitempty" yaml:"affected_connector_or_service,omitempty"`
	IsConnectorIssue           bool    `json:"is_airbyte_connector_issue" yaml:"is_airbyte_connector_issue"`
	Reasoning                  string  `json:"reasoning" yaml:"reasoning"`

	Usage *TokenUsage `json:"-" yaml:"-"`
}

// Classification returns the report flag for the analysis.
func (a Analysis) Classification() string {
	if a.IsConnectorIssue {
		return "CONNECTOR"
	}
	return "other"
}

// ConnectorLabel returns " [name]" when a connector or service was identified.
func (a Analysis) ConnectorLabel() string {
	if a.AffectedConnectorOrService == nil || *a.AffectedConnectorOrService == "" {
		return ""
	}
	return " [" + *a.AffectedConnectorOrService + "]"
}

// TriageResult pairs a bundle with its analysis.
type TriageResult struct {
	Bundle   IssueBundle `json:"issue" yaml:"issue"`
	Analysis Analysis    `json:"analysis" yaml:"analysis"`
}
