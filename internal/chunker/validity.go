package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var meaninglessPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^-\s*\d+\s*-$`),
	regexp.MustCompile(`^#{1,6}\s*\d+\.?\s*$`),
	regexp.MustCompile(`^#{1,6}\s*$`),
	regexp.MustCompile(`^-{3,}$`),
	regexp.MustCompile(`^\*{3,}$`),
}

// IsValidChunk rejects blank text, text shorter than minSize characters, and
// structural leftovers such as page numbers, bare heading markers and rules.
func IsValidChunk(text string, minSize int) bool {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return false
	}
	for _, p := range meaninglessPatterns {
		if p.MatchString(stripped) {
			return false
		}
	}
	return utf8.RuneCountInString(stripped) >= minSize
}
