package review

import (
	"regexp"
	"strings"
)

var blankRuns = regexp.MustCompile(`\n{2,}`)

// Normalize trims surrounding whitespace and collapses every run of blank
// lines into a single blank line.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
