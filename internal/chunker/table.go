package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	headerSearchLines   = 6
	keywordSearchRunes  = 500
	maxContextParts     = 3
	headerCandidateCols = 5
	contextHeadline     = "## "
)

var (
	breakTag       = regexp.MustCompile(`(?i)<br\s*/?>`)
	doubleSpace    = regexp.MustCompile(`  +`)
	tableSeparator = regexp.MustCompile(`^\|[-:\s|]+\|$`)
	dashesOnly     = regexp.MustCompile(`^[-\s]+$`)
)

// CleanTableText replaces line-break tags with spaces and collapses double spaces.
func CleanTableText(text string) string {
	text = breakTag.ReplaceAllString(text, " ")
	return doubleSpace.ReplaceAllString(text, " ")
}

// ExtractTableContext derives a title from the header row of a markdown
// table, or from domain keywords found near the start of the text.
func (c *Chunker) ExtractTableContext(tableText string) string {
	lines := strings.Split(strings.TrimSpace(tableText), "\n")
	first := strings.TrimSpace(lines[0])

	if strings.HasPrefix(first, "|") && strings.HasSuffix(first, "|") {
		var cells []string
		for _, cell := range strings.Split(first, "|") {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > headerCandidateCols {
			cells = cells[:headerCandidateCols]
		}
		var keys []string
		for _, cell := range cells {
			if utf8.RuneCountInString(cell) >= 2 && !dashesOnly.MatchString(cell) {
				keys = append(keys, cell)
			}
			if len(keys) == maxContextParts {
				break
			}
		}
		if len(keys) > 0 {
			return strings.Join(keys, " / ")
		}
	}

	head := tableText
	if runes := []rune(head); len(runes) > keywordSearchRunes {
		head = string(runes[:keywordSearchRunes])
	}
	var found []string
	for _, kw := range c.cfg.ContextKeywords {
		if strings.Contains(head, kw) {
			found = append(found, kw)
		}
		if len(found) == maxContextParts {
			break
		}
	}
	return strings.Join(found, " / ")
}

// ChunkTable splits a markdown table into chunks of at most maxSize tokens.
// Every chunk repeats the header and separator rows and is headed by the
// context title. Tables without a separator near the top are split as text.
func (c *Chunker) ChunkTable(tableText, contextTitle string, maxSize int) []string {
	tableText = CleanTableText(tableText)
	if contextTitle == "" {
		contextTitle = c.ExtractTableContext(tableText)
	}
	withTitle := func(body string) string {
		if contextTitle == "" {
			return body
		}
		return contextHeadline + contextTitle + "\n\n" + body
	}

	if CountTokens(tableText) <= maxSize {
		return []string{withTitle(tableText)}
	}

	lines := strings.Split(tableText, "\n")
	sepIdx := -1
	for i := 0; i < len(lines) && i < headerSearchLines; i++ {
		if tableSeparator.MatchString(strings.TrimSpace(lines[i])) {
			sepIdx = i
			break
		}
	}
	if sepIdx < 0 {
		return SplitText(withTitle(tableText), maxSize, c.cfg.ChunkOverlap)
	}

	header := strings.Join(lines[:sepIdx+1], "\n")
	headerSize := CountTokens(header)

	var (
		chunks []string
		rows   []string
		size   int
	)
	flush := func() {
		if len(rows) > 0 {
			chunks = append(chunks, withTitle(header+"\n"+strings.Join(rows, "\n")))
		}
	}
	for _, line := range lines[sepIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineSize := CountTokens(line)
		if size+lineSize+headerSize <= maxSize {
			rows = append(rows, line)
			size += lineSize
			continue
		}
		flush()
		rows = []string{line}
		size = lineSize
	}
	flush()
	return chunks
}
