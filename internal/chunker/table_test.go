package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTableSmallTableKeepsTitle(t *testing.T) {
	c := New(DefaultConfig())
	table := "| 구분 | 면적 |\n|---|---|\n| A | 16.95 |"

	got := c.ChunkTable(table, "공급대상", 3000)
	assert.Equal(t, []string{"## 공급대상\n\n" + table}, got)
}

func TestChunkTableCleansMarkup(t *testing.T) {
	c := New(DefaultConfig())

	got := c.ChunkTable("| 구분 | 비고<br/>없음 |\n|---|---|\n| A |  B<BR>C |", "표", 3000)
	assert.Equal(t, []string{"## 표\n\n| 구분 | 비고 없음 |\n|---|---|\n| A | B C |"}, got)
}

func TestChunkTableSplitsDataRows(t *testing.T) {
	c := New(DefaultConfig())

	header := []string{"| 구분 | 값 |", "|---|---|"}
	var rows []string
	for i := 0; i < 10; i++ {
		rows = append(rows, "| a | b |")
	}
	rows[3] = "| c | d |"
	rows[8] = "| e | f |"
	table := strings.Join(append(append([]string{}, header...), rows...), "\n")

	maxSize := 38
	require.Equal(t, maxSize*3/2, CountTokens(table))

	got := c.ChunkTable(table, "", maxSize)
	require.Len(t, got, 2)

	var rebuilt []string
	for _, chunk := range got {
		assert.True(t, strings.HasPrefix(chunk, "## 구분\n\n"+strings.Join(header, "\n")+"\n"))
		body := strings.TrimPrefix(chunk, "## 구분\n\n")
		lines := strings.Split(body, "\n")
		assert.Equal(t, header, lines[:2])
		rebuilt = append(rebuilt, lines[2:]...)
	}
	assert.Equal(t, rows, rebuilt)
}

func TestChunkTableWithoutSeparatorFallsBackToText(t *testing.T) {
	c := New(DefaultConfig())

	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "| aaa bbb |"
	}
	table := strings.Join(lines, "\n")

	got := c.ChunkTable(table, "", 10)
	assert.Equal(t, []string{"## aaa bbb", table}, got)
}

func TestChunkTableLateSeparatorFallsBackToText(t *testing.T) {
	c := New(DefaultConfig())

	lines := []string{"| h |", "| h |", "| h |", "| h |", "| h |", "| h |", "|---|", "| x |"}
	table := strings.Join(lines, "\n")

	got := c.ChunkTable(table, "제목", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "## 제목", got[0])
}

func TestExtractTableContext(t *testing.T) {
	c := New(DefaultConfig())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "header cells", in: "| 구분 | 면적 | 층 |\n|---|---|---|", want: "구분 / 면적"},
		{name: "at most three cells", in: "| 구분 | 면적 | 세대 | 비고 |", want: "구분 / 면적 / 세대"},
		{name: "keywords in list order", in: "임대 조건 안내 소득 기준", want: "소득 / 임대 / 기준"},
		{name: "dash header falls back to keywords", in: "| --- | - |\n보증금 안내", want: "보증금"},
		{name: "nothing", in: "내용 없음", want: ""},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ExtractTableContext(tt.in))
		})
	}
}

func TestIsValidChunk(t *testing.T) {
	long := strings.Repeat("유효한 청크 텍스트 ", 10)

	tests := []struct {
		name string
		text string
		min  int
		want bool
	}{
		{name: "page number", text: "- 5 -", min: 50, want: false},
		{name: "page number ignores min size", text: "- 5 -", min: 0, want: false},
		{name: "empty", text: "", min: 0, want: false},
		{name: "whitespace", text: " \n\t ", min: 0, want: false},
		{name: "bare heading marker", text: "## ", min: 0, want: false},
		{name: "numbered heading", text: "### 3.", min: 0, want: false},
		{name: "dash rule", text: "-----", min: 0, want: false},
		{name: "star rule", text: "***", min: 0, want: false},
		{name: "too short", text: "짧다", min: 50, want: false},
		{name: "valid", text: long, min: 50, want: true},
		{name: "short but allowed", text: "짧다", min: 2, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidChunk(tt.text, tt.min))
		})
	}
}
