package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"

	"github.com/grassfps/grassfps/internal/category"
	"github.com/grassfps/grassfps/internal/filter"
	"github.com/grassfps/grassfps/internal/flags"
	"github.com/grassfps/grassfps/internal/logging"
	"github.com/grassfps/grassfps/internal/numeric"
	"github.com/grassfps/grassfps/internal/patcher"
	"github.com/grassfps/grassfps/internal/pattern"
	"github.com/grassfps/grassfps/internal/setting"
	"github.com/grassfps/grassfps/internal/util"
)

// Root is the top-level configuration of a patcher run.
type Root struct {
	Categories    []*category.Category `json:"categories,omitempty" description:"Categories applied in order to every record their filter selects."`
	GlobalFilters filter.Global        `json:"global_filters,omitempty"`
	Regex         Regex                `json:"regex,omitempty"`
	Patcher       Patcher              `json:"patcher,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

// Regex configures how editor identifier patterns are evaluated.
type Regex struct {
	// Options are applied to an empty option set. When unset the defaults are
	// singleline, compiled and ignore_case. Singleline is always added.
	Options        flags.Pipeline[pattern.Option] `json:"options,omitempty" description:"Operations building the regular expression options."`
	Timeout        *Duration                      `json:"timeout,omitempty" description:"Upper bound for a single match attempt, e.g. 3s."`
	DisableTimeout bool                           `json:"disable_timeout,omitempty" description:"Let matches run without a time limit."`
	CacheSize      int                            `json:"cache_size,omitempty" minimum:"0" description:"Number of compiled expressions kept when the compiled option is set."`

	_ struct{} `additionalProperties:"false"`
}

type Patcher struct {
	Overflow numeric.Overflow `json:"overflow,omitempty" description:"What to do with integer results that do not fit their field."`
	Workers  int              `json:"workers,omitempty" minimum:"0" description:"Records patched concurrently. Zero uses the number of CPUs."`

	_ struct{} `additionalProperties:"false"`
}

func (r *Root) UnmarshalYAML(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalYAML by type aliasing
	var raw rawRoot

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.unmarshal()
}

func (r *Root) UnmarshalJSON(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalJSON by type aliasing
	var raw rawRoot

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.unmarshal()
}

// unmarshal drops empty category entries, they have no schema to fail on.
func (r *Root) unmarshal() error {
	r.Categories = slices.DeleteFunc(r.Categories, func(c *category.Category) bool { return c == nil })
	return nil
}

// Validate checks what the schema cannot: flag operators and enum values that
// would make every record fail.
func (r *Root) Validate() error {
	var errs []error
	for _, c := range r.Categories {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.Regex.Options.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("regex options: %w", err))
	}
	if r.Regex.Timeout != nil && *r.Regex.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("regex timeout %v: must be positive, use disable_timeout for unbounded matching", *r.Regex.Timeout))
	}
	return errors.Join(errs...)
}

// ValidatePatterns compiles every editor identifier pattern.
func (r *Root) ValidatePatterns(m filter.Compiler) error {
	var errs []error
	for _, c := range r.Categories {
		if err := c.Filter.Validate(m); err != nil {
			errs = append(errs, fmt.Errorf("category %q: %w", c.Identifier, err))
		}
	}
	return errors.Join(errs...)
}

// Select returns the categories whose identifier matches any of the glob
// patterns, in configuration order. No patterns selects all categories.
func (r *Root) Select(patterns ...string) ([]*category.Category, error) {
	if len(patterns) == 0 {
		return r.Categories, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid category pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	var selected []*category.Category
	for _, c := range r.Categories {
		if slices.ContainsFunc(globs, func(g glob.Glob) bool { return g.Match(c.Identifier) }) {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// Matcher builds the pattern matcher described by the regex section.
func (r *Root) Matcher(log *logging.Logger) (*pattern.Matcher, error) {
	cfg, err := r.Regex.Config()
	if err != nil {
		return nil, err
	}

	m, err := pattern.New(cfg)
	if err != nil {
		return nil, err
	}
	return m.WithLogger(log), nil
}

// NewPatcher wires the selected categories, the global filters and the
// pattern matcher into a Patcher.
func (r *Root) NewPatcher(log *logging.Logger, categories []*category.Category) (*patcher.Patcher, error) {
	m, err := r.Matcher(log)
	if err != nil {
		return nil, err
	}

	return patcher.New(categories, r.GlobalFilters, m).
		WithLogger(log).
		WithOverflow(r.Patcher.Overflow).
		WithWorkers(r.Patcher.Workers), nil
}

func (r *Root) Equal(other *Root) bool {
	return util.FastEqual(r, other, func(r, other *Root) bool {
		return slices.EqualFunc(r.Categories, other.Categories, (*category.Category).Equal) &&
			r.GlobalFilters.Equal(&other.GlobalFilters) &&
			r.Regex.Equal(&other.Regex) &&
			r.Patcher == other.Patcher
	})
}

// Config resolves the section into the effective matcher configuration.
func (r *Regex) Config() (pattern.Config, error) {
	ops := r.Options
	if ops == nil {
		ops = pattern.DefaultOptions()
	}

	options, _, err := ops.Apply(0)
	if err != nil {
		return pattern.Config{}, fmt.Errorf("regex options: %w", err)
	}

	cfg := pattern.Config{
		Options:   options,
		Timeout:   pattern.DefaultTimeout,
		CacheSize: r.CacheSize,
	}
	if r.Timeout != nil {
		cfg.Timeout = time.Duration(*r.Timeout)
	}
	if r.DisableTimeout {
		cfg.Timeout = 0
	}

	return cfg, nil
}

func (r *Regex) Equal(other *Regex) bool {
	return util.FastEqual(r, other, func(r, other *Regex) bool {
		return r.Options.Equal(other.Options) &&
			util.PtrEqual(r.Timeout, other.Timeout) &&
			r.DisableTimeout == other.DisableTimeout &&
			r.CacheSize == other.CacheSize
	})
}

// Default returns the configuration used when none is given: every record
// gets a denser, flatter placement and windy grass a longer wave period.
func Default() *Root {
	return &Root{
		Categories: []*category.Category{
			{
				Identifier:    "Default",
				Filter:        filter.Filter{ApplyToAll: true},
				Density:       setting.Enable[int16](80),
				MaxSlope:      setting.Enable[int16](90),
				PositionRange: setting.Enable[float32](1),
			},
			{
				Identifier: "Windy Grass",
				Filter:     filter.Filter{EditorIDPatterns: []string{"Windy"}},
				WavePeriod: setting.Enable[float32](300),
			},
		},
	}
}

func Validate(data []byte) error {
	var config any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return err
	}

	return rootSchema.Validate(config)
}

func ParseFile(filename string) (root *Root, err error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	return Parse(bs)
}

func Parse(bs []byte) (*Root, error) {
	if err := Validate(bs); err != nil {
		return nil, err
	}

	var root Root
	if err := yaml.Unmarshal(bs, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := root.Validate(); err != nil {
		return nil, err
	}

	return &root, nil
}

// Instead of marshaling and unmarshaling as int64 it uses strings, like "5m" or "0.5s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	val, err := time.ParseDuration(str)
	*d = Duration(val)
	return err
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(bs []byte) error {
	var s string
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return err
	}
	val, err := time.ParseDuration(s)
	*d = Duration(val)
	return err
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
