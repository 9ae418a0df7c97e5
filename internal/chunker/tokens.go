package chunker

import "strings"

// CountTokens approximates the token count of mixed Korean/Latin text as the
// whitespace word count plus half the number of Hangul syllables.
func CountTokens(text string) int {
	return len(strings.Fields(text)) + countHangul(text)/2
}

func isHangul(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}
