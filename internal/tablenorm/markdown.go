package tablenorm

import (
	"strings"
)

// CleanText removes NUL and other control characters, keeping tabs and line breaks.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < ' ' && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RowsToMarkdown renders a grid of cells as a markdown table. Leading header
// rows are detected with keywords and merged into a single header line.
func RowsToMarkdown(rows [][]string, keywords []string) string {
	rows = dropEmptyRows(rows)
	if len(rows) == 0 {
		return ""
	}

	headerCount := DetectHeaderRowCount(rows, keywords)
	if headerCount > len(rows) {
		headerCount = len(rows)
	}
	headers := MergeHeaderRows(rows, headerCount)
	for _, row := range rows {
		for len(headers) < len(row) {
			headers = append(headers, columnName("", len(headers)))
		}
	}
	for i, h := range headers {
		headers[i] = CleanText(h)
	}

	lines := make([]string, 0, len(rows)-headerCount+2)
	lines = append(lines, "| "+strings.Join(headers, " | ")+" |")

	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(sep, " | ")+" |")

	for _, row := range rows[headerCount:] {
		cells := make([]string, len(headers))
		for i := range cells {
			if i >= len(row) {
				continue
			}
			cell := CleanText(strings.TrimSpace(row[i]))
			cell = strings.ReplaceAll(cell, delimiter, escapedDelimiter)
			cell = strings.ReplaceAll(cell, "\n", " ")
			cells[i] = cell
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
