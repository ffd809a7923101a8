// Package pattern evaluates user supplied regular expressions against record
// names.
//
// A Matcher is built once from configuration and shared read-only by every
// predicate evaluation of a run:
//
//	m, err := pattern.New(pattern.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	ok := m.IsMatch("WindyGrassPatch", "windy")
//
// Matching runs on a backtracking engine, so every attempt is bounded by the
// configured timeout. Failures (malformed patterns and timeouts) surface from
// Match as ErrInvalidPattern and ErrPatternTimeout; IsMatch logs them and
// reports no match.
package pattern

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/grassfps/grassfps/internal/logging"
	"github.com/grassfps/grassfps/internal/metrics"
)

const (
	DefaultTimeout   = 3000 * time.Millisecond
	DefaultCacheSize = 256
)

type Config struct {
	// Options are the effective engine options. Singleline is always added.
	Options Option
	// Timeout bounds a single match attempt. Zero or negative is unbounded.
	Timeout time.Duration
	// CacheSize bounds the number of compiled expressions kept when the
	// Compiled option is set.
	CacheSize int
}

func DefaultConfig() Config {
	opts, _, _ := DefaultOptions().Apply(0)
	return Config{Options: opts, Timeout: DefaultTimeout, CacheSize: DefaultCacheSize}
}

type Matcher struct {
	options Option
	timeout time.Duration
	cache   *lru.Cache
	log     *logging.Logger
}

func New(cfg Config) (*Matcher, error) {
	m := &Matcher{
		options: cfg.Options | Singleline,
		timeout: cfg.Timeout,
	}

	if m.timeout <= 0 {
		m.timeout = regexp2.DefaultMatchTimeout
	}

	if m.options&Compiled != 0 {
		size := cfg.CacheSize
		if size <= 0 {
			size = DefaultCacheSize
		}
		cache, err := lru.New(size)
		if err != nil {
			return nil, err
		}
		m.cache = cache
	}

	return m, nil
}

func (m *Matcher) WithLogger(log *logging.Logger) *Matcher {
	m.log = log
	return m
}

// Options returns the effective option set.
func (m *Matcher) Options() Option {
	return m.options
}

// Timeout returns the bound applied to each match attempt.
func (m *Matcher) Timeout() time.Duration {
	return m.timeout
}

// Compile checks that expr is a valid pattern under the configured options.
func (m *Matcher) Compile(expr string) error {
	_, err := m.compile(expr)
	return err
}

// Match reports whether text contains a match of expr.
func (m *Matcher) Match(text, expr string) (bool, error) {
	re, err := m.compile(expr)
	if err != nil {
		return false, err
	}

	ok, err := re.MatchString(text)
	if err != nil {
		return false, fmt.Errorf("%w: %q after %v: %v", ErrPatternTimeout, expr, m.timeout, err)
	}

	return ok, nil
}

// IsMatch is Match with failures treated as no match.
func (m *Matcher) IsMatch(text, expr string) bool {
	ok, err := m.Match(text, expr)
	if err != nil {
		kind := "timeout"
		if errors.Is(err, ErrInvalidPattern) {
			kind = "invalid"
		}
		metrics.PatternErrors.WithLabelValues(kind).Inc()
		m.log.Warnf("Pattern %q not evaluated against %q: %v", expr, text, err)
		return false
	}
	return ok
}

func (m *Matcher) compile(expr string) (*regexp2.Regexp, error) {
	if m.cache != nil {
		if v, ok := m.cache.Get(expr); ok {
			return v.(*regexp2.Regexp), nil
		}
	}

	re, err := regexp2.Compile(expr, m.options.engineOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	re.MatchTimeout = m.timeout
	metrics.PatternCompiles.Inc()

	if m.cache != nil {
		m.cache.Add(expr, re)
	}

	return re, nil
}
