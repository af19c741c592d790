// Package report renders triage results for the terminal and for chat.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	FormatTextName = "text"
	FormatJSONName = "json"
	FormatYAMLName = "yaml"
)

// FormatText renders one block per result in the plain terminal layout.
func FormatText(results []models.TriageResult) string {
	var sb strings.Builder
	for _, r := range results {
		b, a := r.Bundle, r.Analysis

		fmt.Fprintf(&sb, "## %s — %s\n", b.Ref(), b.Title)
		if b.Link != nil && *b.Link != "" {
			fmt.Fprintf(&sb, "  Link: %s\n", *b.Link)
		}
		fmt.Fprintf(&sb, "  Classification: %s%s\n", a.Classification(), a.ConnectorLabel())
		fmt.Fprintf(&sb, "  Severity: %s\n", a.Severity)
		fmt.Fprintf(&sb, "  Area: %s\n", a.ImpactedArea)
		fmt.Fprintf(&sb, "  Summary: %s\n", a.ProblemSummary)
		fmt.Fprintf(&sb, "  Reasoning: %s\n", a.Reasoning)
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatSlack builds the single mrkdwn message posted to the channel.
func FormatSlack(results []models.TriageResult) string {
	lines := []string{
		fmt.Sprintf(":mag: *Sonar Funnel Report* — %d issue(s) analyzed\n", len(results)),
	}

	for _, r := range results {
		b, a := r.Bundle, r.Analysis
		lines = append(lines,
			fmt.Sprintf("*%s — %s*", b.Ref(), b.Title),
			fmt.Sprintf(">  Classification: `%s`%s", a.Classification(), a.ConnectorLabel()),
			fmt.Sprintf(">  Severity: `%s`", a.Severity),
			fmt.Sprintf(">  Area: %s", a.ImpactedArea),
			fmt.Sprintf(">  Summary: %s", a.ProblemSummary),
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// FormatNoIssues is the chat message sent when the window was empty.
func FormatNoIssues(days int) string {
	return fmt.Sprintf("No new issues found in the last %d day(s).", days)
}

// Render writes results to w in the requested format. An empty format means text.
func Render(w io.Writer, format string, results []models.TriageResult) error {
	if results == nil {
		results = []models.TriageResult{}
	}

	switch strings.ToLower(format) {
	case "", FormatTextName:
		_, err := io.WriteString(w, FormatText(results))
		return err
	case FormatJSONName:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case FormatYAMLName:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	default:
		return appErrors.ErrUnknownFormat.WithContext("format", format)
	}
}

// ValidFormat reports whether Render understands format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", FormatTextName, FormatJSONName, FormatYAMLName:
		return true
	}
	return false
}
