// Package inference turns a free-text statement into an anxiety tier, an
// empathetic explanation and a short list of coping suggestions.
package inference

import (
	"regexp"
	"strings"
)

var (
	nonAlphaPattern   = regexp.MustCompile(`[^a-zA-Z\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize keeps ASCII letters and whitespace, lower-cases, and collapses
// runs of whitespace into single spaces. Input with no letters yields "".
func Normalize(text string) string {
	text = nonAlphaPattern.ReplaceAllString(text, "")
	text = strings.ToLower(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
