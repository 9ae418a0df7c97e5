package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// SplitText packs paragraphs into chunks of at most target tokens. When a
// chunk closes, the next one is seeded with its last paragraph if that
// paragraph fits in overlap. Paragraphs larger than target are split by
// sentence instead.
func SplitText(text string, target, overlap int) []string {
	if CountTokens(text) <= target {
		return []string{strings.TrimSpace(text)}
	}

	var (
		chunks  []string
		current []string
		size    int
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
		}
	}

	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraSize := CountTokens(para)

		if paraSize > target {
			flush()
			current, size = nil, 0
			chunks = append(chunks, splitSentences(para, target)...)
			continue
		}

		if size+paraSize <= target {
			current = append(current, para)
			size += paraSize
			continue
		}

		flush()
		if overlap > 0 && len(current) > 0 {
			last := current[len(current)-1]
			if lastSize := CountTokens(last); lastSize <= overlap {
				current = []string{last, para}
				size = lastSize + paraSize
				continue
			}
		}
		current = []string{para}
		size = paraSize
	}
	flush()
	return chunks
}

func splitSentences(text string, target int) []string {
	var (
		chunks  []string
		current []string
		size    int
	)
	for _, sent := range sentences(text) {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		sentSize := CountTokens(sent)
		if size+sentSize <= target {
			current = append(current, sent)
			size += sentSize
			continue
		}
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}
		current = []string{sent}
		size = sentSize
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// sentences cuts text after terminal punctuation that is followed by whitespace.
func sentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		if !isTerminal(runes[i]) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// capTokens re-cuts text whose estimate exceeds limit into word-packed pieces
// of at most limit tokens. A single word that is too long on its own is cut
// between runes.
func capTokens(text string, limit int) []string {
	if limit <= 0 || CountTokens(text) <= limit {
		return []string{text}
	}

	var (
		out           []string
		current       []string
		words, hangul int
	)
	for _, word := range strings.Fields(text) {
		for _, piece := range cutWord(word, limit) {
			h := countHangul(piece)
			if len(current) > 0 && words+1+(hangul+h)/2 > limit {
				out = append(out, strings.Join(current, " "))
				current, words, hangul = nil, 0, 0
			}
			current = append(current, piece)
			words++
			hangul += h
		}
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, " "))
	}
	return out
}

func cutWord(word string, limit int) []string {
	maxHangul := 2*limit - 1
	if countHangul(word) <= maxHangul {
		return []string{word}
	}
	var (
		pieces []string
		start  int
		h      int
	)
	for i, r := range word {
		if !isHangul(r) {
			continue
		}
		if h == maxHangul {
			pieces = append(pieces, word[start:i])
			start, h = i, 0
		}
		h++
	}
	return append(pieces, word[start:])
}

func countHangul(text string) int {
	n := 0
	for _, r := range text {
		if isHangul(r) {
			n++
		}
	}
	return n
}
