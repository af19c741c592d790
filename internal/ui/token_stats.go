package ui

import (
	"fmt"
	"io"

	"github.com/Tomas-vilte/sonar-funnel/internal/i18n"
	"github.com/Tomas-vilte/sonar-funnel/internal/models"
)

// PrintTokenUsage writes the accumulated LLM token usage of a run and its
// estimated cost in USD when known.
func PrintTokenUsage(w io.Writer, usage models.TokenUsage, estimatedCost float64, t *i18n.Translations) {
	if usage.TotalTokens == 0 {
		return
	}
	msg := t.GetMessage("token_usage", 0, map[string]interface{}{
		"Total":  usage.TotalTokens,
		"Input":  usage.InputTokens,
		"Output": usage.OutputTokens,
	})
	if usage.Model != "" {
		msg += " " + Dim.Sprintf("[%s]", usage.Model)
	}
	if estimatedCost > 0 {
		msg += " " + Dim.Sprintf("~$%.4f", estimatedCost)
	}
	_, _ = fmt.Fprintln(w, msg)
}
