package ai

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Tomas-vilte/sonar-funnel/internal/models"
)

const SystemPrompt = `You are an expert at triaging customer support issues for Airbyte, a data integration platform. Given a support issue and its messages, classify whether it is related to an Airbyte-maintained connector.

Airbyte-maintained connectors are source and destination connectors that Airbyte builds and supports (e.g. source-postgres, destination-snowflake, source-shopify, destination-bigquery). Issues about these connectors typically involve sync failures, data quality problems, configuration errors, or missing features in a specific connector.

Issues that are NOT connector issues include: billing questions, account access, platform/UI bugs, general how-to questions, feature requests for the platform, questions about Airbyte Cloud infrastructure, or issues with custom/community connectors.

For severity, use:
- critical: Production data pipeline down, data loss, or security issue
- high: Significant functionality broken, blocking customer workflows
- medium: Partial functionality issues, workarounds available
- low: Minor issues, cosmetic problems, or general questions`

const languageInstructionTemplate = `

Write problem_summary, impacted_area and reasoning in {{.Language}}. Keep severity values and connector names in English.`

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
}

// PromptData holds the parameters for template rendering
type PromptData struct {
	Language string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}
	return buf.String(), nil
}

// BuildSystemPrompt returns the triage instructions, asking for free-text
// fields in the given language when it is not English.
func BuildSystemPrompt(lang string) (string, error) {
	name, ok := languageNames[strings.ToLower(lang)]
	if !ok || name == "English" {
		return SystemPrompt, nil
	}

	instruction, err := RenderPrompt("language", languageInstructionTemplate, PromptData{Language: name})
	if err != nil {
		return "", err
	}
	return SystemPrompt + instruction, nil
}

// FormatIssueForAnalysis renders a bundle as the user prompt. Optional fields
// are omitted when absent and the messages section only appears when there is
// message text.
func FormatIssueForAnalysis(bundle models.IssueBundle) string {
	parts := []string{"Issue: " + bundle.Title}

	if bundle.IssueNumber != nil && *bundle.IssueNumber != 0 {
		parts = append(parts, "Number: #"+strconv.Itoa(*bundle.IssueNumber))
	}
	if bundle.State != nil && *bundle.State != "" {
		parts = append(parts, "State: "+*bundle.State)
	}
	if bundle.CreatedAt != nil && *bundle.CreatedAt != "" {
		parts = append(parts, "Created: "+*bundle.CreatedAt)
	}
	if len(bundle.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(bundle.Tags, ", "))
	}

	if bundle.MessageText != "" {
		parts = append(parts, "\n## Messages\n"+bundle.MessageText)
	}

	return strings.Join(parts, "\n")
}
