package pdfparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipfit/internal/document"
)

func TestExtractElements(t *testing.T) {
	md := "# 공급대상\n" +
		"행복주택 입주자를 모집합니다.\n" +
		"\n" +
		"| 구분 | 면적 |\n" +
		"|---|---|\n" +
		"| A | 16.95 |\n" +
		"## 신청자격\n" +
		"무주택 세대구성원\n" +
		"#\n" +
		"끝"

	elements := ExtractElements(md, 3)
	require.Len(t, elements, 6)

	assert.Equal(t, document.ElementHeading, elements[0].Type)
	assert.Equal(t, "공급대상", elements[0].Content)
	assert.Equal(t, 1, elements[0].Metadata[MetaHeadingLevel])

	assert.Equal(t, document.ElementText, elements[1].Type)
	assert.Equal(t, "행복주택 입주자를 모집합니다.", elements[1].Content)

	assert.Equal(t, document.ElementTable, elements[2].Type)
	assert.Equal(t, "| 구분 | 면적 |\n|---|---|\n| A | 16.95 |", elements[2].Content)

	assert.Equal(t, "신청자격", elements[3].Content)
	assert.Equal(t, 2, elements[3].Metadata[MetaHeadingLevel])
	assert.Equal(t, "무주택 세대구성원", elements[4].Content)
	assert.Equal(t, "끝", elements[5].Content)

	for _, e := range elements {
		assert.Equal(t, 3, e.Page)
	}
}

func TestExtractElementsTableAtEnd(t *testing.T) {
	elements := ExtractElements("소개\n| a | b |\n|---|---|", 1)
	require.Len(t, elements, 2)
	assert.Equal(t, document.ElementText, elements[0].Type)
	assert.Equal(t, document.ElementTable, elements[1].Type)
}

func TestExtractDocumentPages(t *testing.T) {
	elements := ExtractDocument("# 1쪽\n본문\f# 2쪽\n| a |")
	require.Len(t, elements, 4)
	assert.Equal(t, 1, elements[1].Page)
	assert.Equal(t, 2, elements[2].Page)
	assert.Equal(t, document.ElementTable, elements[3].Type)
}
