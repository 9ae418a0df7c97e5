package tablenorm

import (
	"fmt"
	"regexp"
)

// RepeatMode controls how many times a rule is applied to a cell.
type RepeatMode int

const (
	RepeatOnce RepeatMode = iota
	RepeatFixed
	RepeatUntilStable
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatOnce:
		return "once"
	case RepeatFixed:
		return "fixed"
	case RepeatUntilStable:
		return "until-stable"
	default:
		return fmt.Sprintf("RepeatMode(%d)", int(m))
	}
}

// Rule is one regex rewrite in the cell normalization pipeline.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
	Description string
	Mode        RepeatMode
	// Times is only read when Mode is RepeatFixed.
	Times int
}

// NewRule compiles pattern into a Rule.
func NewRule(pattern, replacement, description string, mode RepeatMode, times int) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compile rule %q failed: %w", description, err)
	}
	if mode == RepeatFixed && times <= 0 {
		return Rule{}, fmt.Errorf("rule %q: fixed repeat needs a positive count", description)
	}
	return Rule{
		Pattern:     re,
		Replacement: replacement,
		Description: description,
		Mode:        mode,
		Times:       times,
	}, nil
}

func mustRule(pattern, replacement, description string, mode RepeatMode) Rule {
	r, err := NewRule(pattern, replacement, description, mode, 0)
	if err != nil {
		panic(err)
	}
	return r
}

// Apply runs the rule over text according to its repeat mode.
func (r Rule) Apply(text string) string {
	switch r.Mode {
	case RepeatUntilStable:
		// Every default until-stable rule shrinks its input, so len+1 rounds
		// is an upper bound that is never reached in practice.
		limit := len(text) + 1
		for i := 0; i < limit; i++ {
			next := r.Pattern.ReplaceAllString(text, r.Replacement)
			if next == text {
				return next
			}
			text = next
		}
		return text
	case RepeatFixed:
		for i := 0; i < r.Times; i++ {
			text = r.Pattern.ReplaceAllString(text, r.Replacement)
		}
		return text
	default:
		return r.Pattern.ReplaceAllString(text, r.Replacement)
	}
}

// DefaultRules returns the cell normalization pipeline used for PDF tables.
func DefaultRules() []Rule {
	return []Rule{
		mustRule(`([가-힣])\n([가-힣])`, "${1}${2}", "join hangul split by newline", RepeatUntilStable),
		mustRule(`[\r\n]+`, " ", "newline to space", RepeatOnce),
		mustRule(`([가-힣])\s([가-힣])`, "${1}${2}", "join hangul split by space", RepeatUntilStable),
		mustRule(`([가-힣])\s+(\d)`, "${1}${2}", "join hangul and digit", RepeatUntilStable),
		mustRule(`([가-힣])\s+([A-Za-z])`, "${1}${2}", "join hangul and latin", RepeatUntilStable),
		mustRule(`([A-Za-z])\s+(\d)`, "${1}${2}", "join latin and digit", RepeatUntilStable),
		mustRule(`\s{2,}`, " ", "collapse whitespace runs", RepeatOnce),
		mustRule(`^\s+|\s+$`, "", "trim", RepeatOnce),
	}
}
