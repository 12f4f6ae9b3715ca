package core

import (
	"regexp"
	"strings"
	"time"
)

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	excessSpaces   = regexp.MustCompile(` {2,}`)
)

// CleanText normalizes scraped post text: runs of three or more newlines
// collapse to a paragraph break, runs of spaces collapse to one, and leading
// and trailing whitespace is trimmed. Single and double newlines survive so
// paragraph structure is kept.
func CleanText(text string) string {
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = excessSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// FormatDate renders an imported timestamp as a human-readable date like
// "March 07, 2025". Values that do not match the import layout are returned
// unchanged rather than erased.
func FormatDate(raw string) string {
	t, err := time.Parse(ImportDateLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format(DisplayDateLayout)
}
