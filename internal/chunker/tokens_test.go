package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a b c", 3},
		{"가", 1},
		{"안녕하세요 world", 4},
		{"  공급\t대상\n면적  ", 6},
		{"ＡＢ 123", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountTokens(tt.in), "input %q", tt.in)
	}
}
