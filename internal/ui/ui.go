package ui

import (
	"errors"
	"fmt"
	"io"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/i18n"
	"github.com/fatih/color"
)

var (
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Dim     = color.New(color.FgHiBlack)
)

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Success.Sprint("✓"), Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("✗"), Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Warning.Sprint("!"), Warning.Sprint(msg))
}

// PrintProgress writes an uncolored progress line, matching plain stderr output.
func PrintProgress(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, msg)
}

// HandleAppError prints err as a single diagnostic line, followed by the
// suggestion of the first AppError in the chain when there is one.
func HandleAppError(w io.Writer, err error, t *i18n.Translations) {
	if err == nil {
		return
	}

	PrintError(w, err.Error())

	var appErr *appErrors.AppError
	if !errors.As(err, &appErr) || appErr.Suggestion == "" {
		return
	}

	prefix := "Suggestion"
	if t != nil {
		prefix = t.GetMessage("error_suggestion", 0, nil)
	}
	_, _ = fmt.Fprintf(w, "  %s %s\n", Info.Sprint(prefix+":"), appErr.Suggestion)
}
