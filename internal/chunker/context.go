package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"zipfit/internal/document"
)

var (
	pageNumberOnly = regexp.MustCompile(`^-?\s*\d+\s*-?$`)
	pageHeaderTag  = regexp.MustCompile(`<page_header>([^<]+)</page_header>`)
)

const minContextRunes = 3

// FindContextFromPrevious walks back from elements[current-1] over at most
// lookback elements and returns the first heading, or the first short text
// element, that can serve as a title. It returns "" when nothing qualifies.
func FindContextFromPrevious(elements []document.Element, current, lookback, shortLimit int) string {
	stop := current - lookback - 1
	if stop < -1 {
		stop = -1
	}
	for j := current - 1; j > stop; j-- {
		if j >= len(elements) {
			continue
		}
		prev := elements[j]
		content := strings.TrimSpace(prev.Content)
		if content == "" || pageNumberOnly.MatchString(content) {
			continue
		}

		switch prev.Type {
		case document.ElementHeading:
			return content
		case document.ElementText:
			if utf8.RuneCountInString(content) > shortLimit {
				continue
			}
			clean := strings.TrimSpace(pageHeaderTag.ReplaceAllString(content, "$1"))
			if utf8.RuneCountInString(clean) >= minContextRunes {
				return clean
			}
		}
	}
	return ""
}
