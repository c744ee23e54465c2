package library

import (
	"regexp"
	"strings"
)

var (
	slugStripper   = regexp.MustCompile(`[^A-Za-z0-9_\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// Slugify turns any display string into a lowercase, URL-safe key.
// Word characters, whitespace and hyphens survive; everything else is dropped.
func Slugify(text string) string {
	value := slugStripper.ReplaceAllString(text, "")
	value = strings.ToLower(strings.TrimSpace(value))
	return slugSeparators.ReplaceAllString(value, "-")
}
