package services

import (
	"regexp"
	"strings"
)

var (
	lineBreakTag = regexp.MustCompile(`<br\s*/?>`)
	htmlTag      = regexp.MustCompile(`<[^>]+>`)
)

// StripHTML turns a message body into plain text: line-break tags become
// newlines, every other tag is dropped and the result is trimmed.
func StripHTML(html string) string {
	text := lineBreakTag.ReplaceAllString(html, "\n")
	text = htmlTag.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
