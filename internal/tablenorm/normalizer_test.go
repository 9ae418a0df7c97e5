package tablenorm

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCell(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "newline between hangul", in: "공급\n형별", want: "공급형별"},
		{name: "spaced hangul", in: "양 주 옥 정", want: "양주옥정"},
		{name: "hangul then digit", in: "옥정 3", want: "옥정3"},
		{name: "hangul then latin", in: "송내 S", want: "송내S"},
		{name: "latin then digit", in: "S 1", want: "S1"},
		{name: "multiple newlines between hangul", in: "가\n\n나", want: "가나"},
		{name: "whitespace runs", in: "  a   b  ", want: "a b"},
		{name: "latin newline", in: "A\nB", want: "A B"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.NormalizeCell(tt.in))
		})
	}
}

func TestRuleApplyModes(t *testing.T) {
	once, err := NewRule(`aa`, "a", "halve", RepeatOnce, 0)
	require.NoError(t, err)
	assert.Equal(t, "aa", once.Apply("aaaa"))

	fixed, err := NewRule(`aa`, "a", "halve", RepeatFixed, 2)
	require.NoError(t, err)
	assert.Equal(t, "a", fixed.Apply("aaaa"))

	stable, err := NewRule(`aa`, "a", "halve", RepeatUntilStable, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", stable.Apply(strings.Repeat("a", 64)))

	_, err = NewRule(`aa`, "a", "bad", RepeatFixed, 0)
	assert.Error(t, err)

	_, err = NewRule(`(`, "", "broken", RepeatOnce, 0)
	assert.Error(t, err)
}

func TestNormalizerRuleEditing(t *testing.T) {
	n := NewNormalizer(nil)
	base := len(n.Rules())

	upper, err := NewRule(`x`, "X", "upper x", RepeatOnce, 0)
	require.NoError(t, err)

	n.AddRule(upper, 0)
	require.Len(t, n.Rules(), base+1)
	assert.Equal(t, "upper x", n.Rules()[0].Description)
	assert.Equal(t, "X", n.NormalizeCell("x"))

	n.RemoveRule(0)
	assert.Len(t, n.Rules(), base)
	n.RemoveRule(99)
	assert.Len(t, n.Rules(), base)
}

func TestMergeBrokenLines(t *testing.T) {
	in := []string{
		"제목",
		"| 단지 | 공급",
		"형별 |",
		"|---|---|",
		"| A | 1 |",
		"",
		"| B | 2",
		"계속",
	}
	want := []string{
		"제목",
		"| 단지 | 공급형별 |",
		"|---|---|",
		"| A | 1 |",
		"",
		"| B | 2계속",
	}

	got := MergeBrokenLines(in)
	assert.Equal(t, want, got)
	assert.Equal(t, got, MergeBrokenLines(got), "merging must be idempotent")
}

func TestMergeBrokenLinesIdempotentOnFragments(t *testing.T) {
	inputs := [][]string{
		{"| a |", "x", "y |"},
		{"| a |", "b |"},
		{"x |", "plain"},
		{"| a", "| b |"},
		{"| 단지 | 공급", "형별 | 면적 |", "비고 |"},
		{"| a |", "b |", "c |"},
		{},
	}
	for _, in := range inputs {
		once := MergeBrokenLines(in)
		assert.Equal(t, once, MergeBrokenLines(once), "input %q", in)
	}
}

func TestMergeBrokenLinesCompleteRowIsNeverExtended(t *testing.T) {
	got := MergeBrokenLines([]string{"| 단지 | 공급", "형별 | 면적 |", "비고 |"})
	assert.Equal(t, []string{"| 단지 | 공급형별 | 면적 |", "비고 |"}, got)

	got = MergeBrokenLines([]string{"| a |", "b |", "c |"})
	assert.Equal(t, []string{"| a |", "b |", "c |"}, got)
}

func TestMergeBrokenLinesIdempotentOnRandomSequences(t *testing.T) {
	fragments := []string{
		"| a |", "| 단지 | 공급", "형별 |", "b |", "plain", "계속",
		"", "  ", "|---|---|", "| :-- |", "|", "  | c  ", "d |  ", "| e | f",
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		in := make([]string, rng.Intn(10))
		for j := range in {
			in[j] = fragments[rng.Intn(len(fragments))]
		}
		once := MergeBrokenLines(in)
		require.Equal(t, once, MergeBrokenLines(once), "input %q", in)
	}
}

func TestNormalizeTable(t *testing.T) {
	n := NewNormalizer(nil)

	in := "공급 현황\n| 공급\n형별 | 면 적 |\n|---|---|\n| A 1 | 16.95 |"
	got := n.NormalizeTable(in)

	assert.Equal(t, "공급 현황\n|공급형별|면적|\n|---|---|\n|A1|16.95|", got)
}

func TestNormalizeTableKeepsEscapedPipes(t *testing.T) {
	n := NewNormalizer(nil)

	got := n.NormalizeTable(`| a \| b | c |`)
	assert.Equal(t, `|a \| b|c|`, got)
}

func TestNormalizeTableColumnRules(t *testing.T) {
	dash, err := NewRule(`^(\d+)-(\d)`, "${1}${2}", "drop leading dash", RepeatOnce, 0)
	require.NoError(t, err)

	n := NewNormalizer(append(DefaultRules(), dash))
	n.SetColumnRules("전화", []int{len(n.Rules()) - 1})

	got := n.NormalizeTable("| 전화 | 비고 |\n|---|---|\n| 02-123-4567 | 1-2-3 |")
	assert.Equal(t, "|전화|비고|\n|---|---|\n|021234567|12-3|", got)
}
