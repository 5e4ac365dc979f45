// Package textclean normalizes free-text job descriptions before keyword
// scanning and persistence.
package textclean

import (
	"regexp"
	"strings"
)

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// CleanText replaces every markup tag with a space, collapses whitespace runs,
// trims and lower-cases. It is idempotent: CleanText(CleanText(s)) == CleanText(s).
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}
	plain := tagRegex.ReplaceAllString(raw, " ")
	return strings.ToLower(strings.Join(strings.Fields(plain), " "))
}

// CleanPtr is CleanText for optional text; nil yields "".
func CleanPtr(raw *string) string {
	if raw == nil {
		return ""
	}
	return CleanText(*raw)
}
