package pattern

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/grassfps/grassfps/internal/flags"
)

// Option is the set of engine options exposed to users. Bit values are fixed
// so stored settings keep their meaning.
type Option uint16

const (
	IgnoreCase              Option = 1
	ExplicitCapture         Option = 4
	Compiled                Option = 8
	Singleline              Option = 16
	IgnorePatternWhitespace Option = 32
	RightToLeft             Option = 64
	CultureInvariant        Option = 512
)

func (Option) BitNames() flags.Names[Option] {
	return flags.Names[Option]{
		"ignore_case":               IgnoreCase,
		"explicit_capture":          ExplicitCapture,
		"compiled":                  Compiled,
		"singleline":                Singleline,
		"ignore_pattern_whitespace": IgnorePatternWhitespace,
		"right_to_left":             RightToLeft,
		"culture_invariant":         CultureInvariant,
	}
}

func (o Option) String() string {
	names := o.BitNames().Format(o)
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// DefaultOptions is the pipeline applied to an empty option set when nothing
// else is configured.
func DefaultOptions() flags.Pipeline[Option] {
	return flags.Pipeline[Option]{
		flags.NewOperation(flags.Enable, Singleline),
		flags.NewOperation(flags.Enable, Compiled),
		flags.NewOperation(flags.Enable, IgnoreCase),
	}
}

// engineOptions translates to regexp2. Compiled selects caching in the Matcher
// and CultureInvariant has no counterpart, matching is always culture neutral.
func (o Option) engineOptions() regexp2.RegexOptions {
	var opts regexp2.RegexOptions
	if flags.Has(o, IgnoreCase) {
		opts |= regexp2.IgnoreCase
	}
	if flags.Has(o, ExplicitCapture) {
		opts |= regexp2.ExplicitCapture
	}
	if flags.Has(o, Singleline) {
		opts |= regexp2.Singleline
	}
	if flags.Has(o, IgnorePatternWhitespace) {
		opts |= regexp2.IgnorePatternWhitespace
	}
	if flags.Has(o, RightToLeft) {
		opts |= regexp2.RightToLeft
	}
	return opts
}
