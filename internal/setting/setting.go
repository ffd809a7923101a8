// Package setting implements values that are applied to a record only when
// they have been switched on.
package setting

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/swaggest/jsonschema-go"
)

// Value wraps a single configured value together with the switch that decides
// whether it is applied. A disabled Value holds the zero value of T and never
// leaks it into a result.
type Value[T comparable] struct {
	Enabled bool `json:"enabled"`
	Value   T    `json:"value"`
}

func Enable[T comparable](v T) Value[T] {
	return Value[T]{Enabled: true, Value: v}
}

func Disabled[T comparable]() Value[T] {
	return Value[T]{}
}

// Resolve returns the configured value when enabled and existing otherwise.
// changed reports whether the result differs from existing.
func (s Value[T]) Resolve(existing T) (T, bool) {
	if !s.Enabled {
		return existing, false
	}
	return s.Value, s.Value != existing
}

func (s Value[T]) Equal(other Value[T]) bool {
	if !s.Enabled && !other.Enabled {
		return true
	}
	return s == other
}

func (s Value[T]) IsZero() bool {
	return !s.Enabled
}

func (s Value[T]) String() string {
	if !s.Enabled {
		return "-"
	}
	return fmt.Sprint(s.Value)
}

type rawValue[T comparable] struct {
	Enabled *bool `json:"enabled"`
	Value   T     `json:"value"`
}

func (r rawValue[T]) value() Value[T] {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	if !enabled {
		return Value[T]{}
	}
	return Value[T]{Enabled: true, Value: r.Value}
}

// UnmarshalYAML accepts either the mapping form {enabled, value} or a bare
// value, which is shorthand for an enabled setting. A mapping without an
// enabled key is enabled.
func (s *Value[T]) UnmarshalYAML(bs []byte) error {
	var probe any
	if err := yaml.Unmarshal(bs, &probe); err != nil {
		return err
	}

	if _, ok := probe.(map[string]any); ok {
		var raw rawValue[T]
		if err := yaml.Unmarshal(bs, &raw); err != nil {
			return fmt.Errorf("failed to decode setting: %w", err)
		}
		*s = raw.value()
		return nil
	}

	if probe == nil {
		*s = Value[T]{}
		return nil
	}

	var v T
	if err := yaml.Unmarshal(bs, &v); err != nil {
		return fmt.Errorf("failed to decode setting: %w", err)
	}
	*s = Enable(v)
	return nil
}

func (s *Value[T]) UnmarshalJSON(bs []byte) error {
	trimmed := bytes.TrimSpace(bs)
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		var raw rawValue[T]
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("failed to decode setting: %w", err)
		}
		*s = raw.value()
		return nil
	case bytes.Equal(trimmed, []byte("null")):
		*s = Value[T]{}
		return nil
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return fmt.Errorf("failed to decode setting: %w", err)
	}
	*s = Enable(v)
	return nil
}

func (s Value[T]) MarshalYAML() (any, error) {
	return map[string]any{"enabled": s.Enabled, "value": s.Value}, nil
}

func (s Value[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"enabled": s.Enabled, "value": s.Value})
}

// PrepareJSONSchema drops the object type so the bare value shorthand
// validates as well.
func (Value[T]) PrepareJSONSchema(schema *jsonschema.Schema) error {
	schema.Type = nil
	return nil
}
