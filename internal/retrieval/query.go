package retrieval

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const minTermRunes = 2

// particles are trailing Korean postpositions removed from query tokens.
var particles = longestFirst([]string{
	"을", "를", "이", "가", "은", "는", "의", "에", "로", "으로", "에서", "과", "와",
})

func longestFirst(list []string) []string {
	out := append([]string(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

// StripParticles removes the first matching trailing particle from word. A
// word that is nothing but a particle is returned unchanged.
func StripParticles(word string) string {
	for _, p := range particles {
		if strings.HasSuffix(word, p) && utf8.RuneCountInString(word) > utf8.RuneCountInString(p) {
			return strings.TrimSuffix(word, p)
		}
	}
	return word
}

// CleanTerms splits query on whitespace and returns the particle-stripped
// tokens that are at least two characters long before and after stripping.
func CleanTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(query) {
		if utf8.RuneCountInString(w) < minTermRunes {
			continue
		}
		if t := StripParticles(w); utf8.RuneCountInString(t) >= minTermRunes {
			terms = append(terms, t)
		}
	}
	return terms
}

var tsqueryReplacer = strings.NewReplacer(
	"&", "", "|", "", "!", "", "(", "", ")", "",
	":", "", "*", "", "<", "", ">", "", "'", "", "\\", "",
)

// FullTextTerms returns the raw query tokens followed by their concatenation,
// with full-text operator characters removed. Duplicates and empty tokens are
// dropped.
func FullTextTerms(query string) []string {
	var words []string
	for _, w := range strings.Fields(query) {
		if w = tsqueryReplacer.Replace(w); w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(words)+1)
	var terms []string
	for _, w := range append(words, strings.Join(words, "")) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}
