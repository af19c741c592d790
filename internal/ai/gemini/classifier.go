package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Tomas-vilte/sonar-funnel/internal/ai"
	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/logger"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
	"github.com/Tomas-vilte/sonar-funnel/internal/retry"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Classifier classifies issues with Gemini using a JSON response schema.
type Classifier struct {
	model        string
	systemPrompt string
	retry        *retry.Controller
	generateFn   generateFunc
	now          func() time.Time
}

var _ ai.IssueClassifier = (*Classifier)(nil)

func NewClassifier(ctx context.Context, apiKey, model, language string, controller *retry.Controller) (*Classifier, error) {
	if apiKey == "" {
		return nil, appErrors.ErrGeminiAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.TypeAI, "error creating AI client", err)
	}

	return newClassifier(client.Models.GenerateContent, model, language, controller)
}

func newClassifier(generate generateFunc, model, language string, controller *retry.Controller) (*Classifier, error) {
	if model == "" {
		model = DefaultModel
	}

	systemPrompt, err := ai.BuildSystemPrompt(language)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.TypeInternal, "error building system prompt", err)
	}

	return &Classifier{
		model:        model,
		systemPrompt: systemPrompt,
		retry:        controller,
		generateFn:   generate,
		now:          time.Now,
	}, nil
}

func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Required: []string{
			"problem_summary",
			"severity",
			"impacted_area",
			"is_airbyte_connector_issue",
			"reasoning",
		},
		Properties: map[string]*genai.Schema{
			"problem_summary": {
				Type:        genai.TypeString,
				Description: "Brief summary of the customer's problem",
			},
			"severity": {
				Type:        genai.TypeString,
				Enum:        []string{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow},
				Description: "Estimated severity: critical, high, medium, or low",
			},
			"impacted_area": {
				Type:        genai.TypeString,
				Description: "Area of the product affected (e.g. connectors, platform, cloud, docs)",
			},
			"affected_connector_or_service": {
				Type:        genai.TypeString,
				Nullable:    genai.Ptr(true),
				Description: "Specific connector or service name if identifiable",
			},
			"is_airbyte_connector_issue": {
				Type:        genai.TypeBoolean,
				Description: "Whether this is an issue with an Airbyte-maintained connector",
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "Brief explanation of the classification decision",
			},
		},
	}
}

// Classify sends one issue to Gemini and decodes the structured answer.
// Throttled calls are retried through the shared retry controller.
func (c *Classifier) Classify(ctx context.Context, bundle models.IssueBundle) (*models.Analysis, error) {
	log := logger.FromContext(ctx).With("issue_id", bundle.IssueID)

	prompt := ai.FormatIssueForAnalysis(bundle)
	config := GetGenerateConfig(c.systemPrompt, analysisSchema())

	log.Debug("calling gemini API", "model", c.model, "prompt_length", len(prompt))

	start := c.now()
	resp, err := retry.Do(ctx, c.retry, "gemini.generateContent", func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		resp, err := c.generateFn(ctx, c.model, genai.Text(prompt), config)
		if err != nil {
			return nil, mapError(err)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	responseText := formatResponse(resp)
	if strings.TrimSpace(responseText) == "" {
		log.Error("empty response from gemini")
		return nil, appErrors.ErrInvalidAIOutput.WithContext("reason", "empty response")
	}

	analysis, err := parseAnalysis(responseText)
	if err != nil {
		log.Debug("unparseable gemini response", "response_text", responseText)
		return nil, err
	}

	analysis.Usage = extractUsage(resp)
	if analysis.Usage != nil {
		analysis.Usage.Model = c.model
		analysis.Usage.DurationMs = c.now().Sub(start).Milliseconds()
	}

	log.Debug("issue classified",
		"severity", analysis.Severity,
		"connector_issue", analysis.IsConnectorIssue)

	return analysis, nil
}

func parseAnalysis(text string) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &analysis); err != nil {
		return nil, appErrors.ErrInvalidAIOutput.WithError(err)
	}

	// Severity is a free label; the schema enum only guides the model.
	analysis.Severity = strings.ToLower(strings.TrimSpace(analysis.Severity))

	if analysis.AffectedConnectorOrService != nil && strings.TrimSpace(*analysis.AffectedConnectorOrService) == "" {
		analysis.AffectedConnectorOrService = nil
	}

	return &analysis, nil
}

// mapError turns genai errors into application errors. Quota errors become
// rate-limit errors carrying the server's RetryInfo delay when present.
func mapError(err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return appErrors.ErrAIGeneration.WithError(err)
	}

	if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
		return appErrors.NewRateLimitError("gemini", retryDelay(apiErr.Details), err)
	}

	return appErrors.ErrAIGeneration.
		WithError(err).
		WithContext("status", apiErr.Status)
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

// retryDelay reads google.rpc.RetryInfo.retryDelay ("23s") from error details.
func retryDelay(details []map[string]any) time.Duration {
	for _, detail := range details {
		if t, _ := detail["@type"].(string); t != retryInfoType {
			continue
		}
		raw, _ := detail["retryDelay"].(string)
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 0
}
