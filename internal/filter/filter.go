// Package filter decides which records a category is applied to.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/grassfps/grassfps/internal/record"
	"github.com/grassfps/grassfps/internal/util"
)

// Matcher evaluates a name pattern. Implementations absorb pattern failures
// and report them as no match.
type Matcher interface {
	IsMatch(text, pattern string) bool
}

// Compiler is implemented by matchers that can check a pattern ahead of use.
type Compiler interface {
	Compile(pattern string) error
}

// Filter selects records by key, by source or by editor identifier pattern.
// ApplyToAll selects every record and Blacklist inverts the outcome.
type Filter struct {
	ApplyToAll       bool               `json:"apply_to_all,omitempty" description:"Select every record regardless of the lists below."`
	Records          []record.Key       `json:"records,omitempty" description:"Record keys in 01A2B3:Plugin.esp form."`
	Sources          []record.SourceKey `json:"sources,omitempty" description:"Plugin file names."`
	EditorIDPatterns []string           `json:"editor_id_patterns,omitempty" description:"Regular expressions matched against the editor identifier."`
	Blacklist        bool               `json:"blacklist,omitempty" description:"Invert the selection."`

	_ struct{} `additionalProperties:"false"`
}

func (f *Filter) Matches(r record.Record, m Matcher) bool {
	match := f.ApplyToAll || f.raw(r, m)
	if f.Blacklist {
		return !match
	}
	return match
}

func (f *Filter) raw(r record.Record, m Matcher) bool {
	key := r.RecordKey()
	if slices.Contains(f.Records, key) || slices.Contains(f.Sources, key.Source) {
		return true
	}

	name, ok := r.Name()
	if !ok || m == nil {
		return false
	}
	for _, p := range f.EditorIDPatterns {
		if m.IsMatch(name, p) {
			return true
		}
	}
	return false
}

// Validate compiles every pattern. Filters work without it, invalid patterns
// simply never match, so this only serves early feedback.
func (f *Filter) Validate(c Compiler) error {
	var errs []error
	for _, p := range f.EditorIDPatterns {
		if err := c.Compile(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Filter) Equal(other *Filter) bool {
	return util.FastEqual(f, other, func(f, other *Filter) bool {
		return f.ApplyToAll == other.ApplyToAll &&
			f.Blacklist == other.Blacklist &&
			util.SetEqual(f.Records, other.Records) &&
			util.SetEqual(f.Sources, other.Sources) &&
			slices.Equal(f.EditorIDPatterns, other.EditorIDPatterns)
	})
}

// String summarises the filter for listings.
func (f *Filter) String() string {
	var parts []string
	if f.ApplyToAll {
		parts = append(parts, "all")
	}
	if n := len(f.Records); n > 0 {
		parts = append(parts, fmt.Sprintf("%d records", n))
	}
	if n := len(f.Sources); n > 0 {
		parts = append(parts, fmt.Sprintf("%d sources", n))
	}
	if n := len(f.EditorIDPatterns); n > 0 {
		parts = append(parts, fmt.Sprintf("%d patterns", n))
	}
	if len(parts) == 0 {
		parts = append(parts, "none")
	}

	s := strings.Join(parts, ", ")
	if f.Blacklist {
		s = "not " + s
	}
	return s
}
