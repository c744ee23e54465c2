package library

import (
	"regexp"
	"strings"
)

// Cleanup steps for folder names, applied in order.
var titleCleaners = []*regexp.Regexp{
	regexp.MustCompile(`^\(?\d+\.?\)?\s*`),     // "1. ", "(2) "
	regexp.MustCompile(`^\d+\s*-?\s*`),         // "03 - "
	regexp.MustCompile(`\s*[\[|(].*[\]|)]\s*`), // "(1988)", "[Team-Up]"
	regexp.MustCompile(`\s*\d+\s*-\s*\d+\s*`),  // "1 - 10"
	regexp.MustCompile(`(?i)\s*v\s?\d+\s*`),    // "v2"
	regexp.MustCompile(`\s+'\W*\s*`),           // "'93-'96" leftovers
	regexp.MustCompile(`[^\x00-\x7f]`),         // non-ASCII
	regexp.MustCompile(`(?i)[\s|-]+annuals.*`), // "... Annuals"
}

// NormalizeTitle turns a raw folder name into a display title.
//
// Only '#' is removed from the raw name before the cleaners run; underscores
// are kept as-is so title keys stay stable. If nothing is left after cleanup
// the original folder name is returned.
func NormalizeTitle(folderName string) string {
	title := strings.ReplaceAll(folderName, "#", "")
	for _, re := range titleCleaners {
		title = re.ReplaceAllString(title, "")
	}
	if title == "" {
		return folderName
	}
	return title
}
