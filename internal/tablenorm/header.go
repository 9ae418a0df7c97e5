package tablenorm

import (
	"fmt"
	"strings"
)

const maxHeaderRows = 4

// DefaultHeaderKeywords are column labels that mark a row as a header row.
var DefaultHeaderKeywords = []string{
	"구분", "항목", "유형", "자격", "기준", "요건", "내용", "순번", "번호",
	"순위", "단지", "주소", "면적", "세대", "신청", "접수", "서류", "일정",
	"기간", "대상", "조건", "공급", "타입", "호수", "층", "금액", "비고",
}

// DetectHeaderRowCount returns how many leading rows (1..4) form the header.
// A row counts when it holds a header keyword and numeric cells are not the
// majority; scanning stops at the first row that fails.
func DetectHeaderRowCount(rows [][]string, keywords []string) int {
	if len(rows) < 2 {
		return 1
	}
	if len(keywords) == 0 {
		keywords = DefaultHeaderKeywords
	}

	count := 0
	for i := 0; i < len(rows) && i < maxHeaderRows; i++ {
		row := rows[i]
		if numericCells(row) > len(row)/2 {
			break
		}
		if !containsAny(joinNonEmpty(row), keywords) {
			break
		}
		count = i + 1
	}
	if count < 1 {
		return 1
	}
	return count
}

// MergeHeaderRows collapses the first n rows into one header per column.
func MergeHeaderRows(rows [][]string, n int) []string {
	if len(rows) == 0 {
		return nil
	}
	if n <= 1 {
		headers := make([]string, len(rows[0]))
		for i, v := range rows[0] {
			headers[i] = columnName(v, i)
		}
		return headers
	}
	if n > len(rows) {
		n = len(rows)
	}

	width := 0
	for _, row := range rows[:n] {
		if len(row) > width {
			width = len(row)
		}
	}

	merged := make([]string, width)
	for col := 0; col < width; col++ {
		var parts []string
		for _, row := range rows[:n] {
			if col >= len(row) {
				continue
			}
			val := strings.TrimSpace(row[col])
			if val != "" && !contains(parts, val) {
				parts = append(parts, val)
			}
		}
		if len(parts) == 0 {
			merged[col] = fmt.Sprintf("col_%d", col)
			continue
		}
		merged[col] = strings.Join(parts, " - ")
	}
	return merged
}

func columnName(v string, i int) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Sprintf("col_%d", i)
	}
	return v
}

func numericCells(row []string) int {
	n := 0
	for _, v := range row {
		if isNumeric(v) {
			n++
		}
	}
	return n
}

func isNumeric(v string) bool {
	v = strings.NewReplacer(",", "", ".", "").Replace(strings.TrimSpace(v))
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func joinNonEmpty(row []string) string {
	parts := make([]string, 0, len(row))
	for _, v := range row {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
