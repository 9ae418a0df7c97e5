package tablenorm

import (
	"regexp"
	"strings"
)

const (
	delimiter        = "|"
	escapedDelimiter = `\|`
	pipePlaceholder  = "\x00PIPE\x00"
)

var separatorRowPattern = regexp.MustCompile(`^\|[\s\-:|]+\|$`)

// Normalizer applies an ordered rule list to table cells.
type Normalizer struct {
	rules []Rule
	// columnRules maps a header keyword to indexes into rules that are
	// applied a second time for cells under a matching column.
	columnRules map[string][]int
}

// NewNormalizer returns a Normalizer using rules, or DefaultRules when rules is empty.
func NewNormalizer(rules []Rule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Normalizer{
		rules:       copied,
		columnRules: map[string][]int{},
	}
}

// Rules returns a copy of the active rule list.
func (n *Normalizer) Rules() []Rule {
	out := make([]Rule, len(n.rules))
	copy(out, n.rules)
	return out
}

// AddRule inserts rule at index, or appends it when index is out of range.
func (n *Normalizer) AddRule(rule Rule, index int) {
	if index < 0 || index >= len(n.rules) {
		n.rules = append(n.rules, rule)
		return
	}
	n.rules = append(n.rules[:index], append([]Rule{rule}, n.rules[index:]...)...)
}

// RemoveRule drops the rule at index. Out-of-range indexes are ignored.
func (n *Normalizer) RemoveRule(index int) {
	if index < 0 || index >= len(n.rules) {
		return
	}
	n.rules = append(n.rules[:index], n.rules[index+1:]...)
}

// SetColumnRules registers extra rule passes for columns whose header contains keyword.
func (n *Normalizer) SetColumnRules(keyword string, ruleIndexes []int) {
	n.columnRules[keyword] = append([]int(nil), ruleIndexes...)
}

// NormalizeCell runs every rule over text in order.
func (n *Normalizer) NormalizeCell(text string) string {
	if text == "" {
		return ""
	}
	for _, rule := range n.rules {
		text = rule.Apply(text)
	}
	return text
}

// NormalizeCellInColumn normalizes text and then applies any rules registered
// for the named column.
func (n *Normalizer) NormalizeCellInColumn(text, column string) string {
	result := n.NormalizeCell(text)
	if column == "" {
		return result
	}
	for keyword, indexes := range n.columnRules {
		if !strings.Contains(column, keyword) {
			continue
		}
		for _, idx := range indexes {
			if idx >= 0 && idx < len(n.rules) {
				result = n.rules[idx].Apply(result)
			}
		}
	}
	return result
}

// IsSeparatorRow reports whether line is a markdown header/body separator.
func IsSeparatorRow(line string) bool {
	return separatorRowPattern.MatchString(strings.TrimSpace(line))
}

// MergeBrokenLines joins table rows that PDF extraction split across lines
// because a cell contained a line break.
func MergeBrokenLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}

	merged := make([]string, 0, len(lines))
	pending := ""
	flush := func() {
		if pending != "" {
			merged = append(merged, pending)
			pending = ""
		}
	}

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		startsRow := strings.HasPrefix(stripped, delimiter)
		endsRow := strings.HasSuffix(stripped, delimiter)

		switch {
		case stripped == "":
			flush()
			merged = append(merged, line)
		case separatorRowPattern.MatchString(stripped):
			flush()
			merged = append(merged, line)
		case startsRow && endsRow:
			flush()
			merged = append(merged, line)
		case startsRow:
			flush()
			pending = line
		case endsRow:
			if pending != "" {
				pending = strings.TrimRight(pending, " \t\r\n") + stripped
			} else {
				pending = line
			}
			flush()
		case pending != "":
			pending = strings.TrimRight(pending, " \t\r\n") + stripped
		default:
			merged = append(merged, line)
		}
	}
	flush()
	return merged
}

// NormalizeTable merges broken rows and normalizes every cell of each
// delimited row. Separator rows and non-table lines pass through.
func (n *Normalizer) NormalizeTable(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return markdown
	}

	lines := MergeBrokenLines(strings.Split(markdown, "\n"))
	out := make([]string, 0, len(lines))
	var header []string

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || !strings.HasPrefix(stripped, delimiter) {
			header = nil
			out = append(out, line)
			continue
		}
		if separatorRowPattern.MatchString(stripped) {
			out = append(out, line)
			continue
		}

		cells := splitCells(line)
		for i, cell := range cells {
			column := ""
			if header != nil && i < len(header) {
				column = header[i]
			}
			cells[i] = n.NormalizeCellInColumn(cell, column)
		}
		if header == nil {
			header = cells
		}
		out = append(out, strings.Join(cells, delimiter))
	}
	return strings.Join(out, "\n")
}

// splitCells splits a row on the delimiter, keeping escaped delimiters inside cells.
func splitCells(line string) []string {
	protected := strings.ReplaceAll(line, escapedDelimiter, pipePlaceholder)
	cells := strings.Split(protected, delimiter)
	for i, cell := range cells {
		cells[i] = strings.ReplaceAll(cell, pipePlaceholder, escapedDelimiter)
	}
	return cells
}
