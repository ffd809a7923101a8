package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/swaggest/jsonschema-go"
)

// WaterType selects how UnitsFromWater is interpreted.
type WaterType uint8

const (
	AboveAtLeast WaterType = iota
	AboveAtMost
	BelowAtLeast
	BelowAtMost
	EitherAtLeast
	EitherAtMost
	EitherAtMostAbove
	EitherAtMostBelow
)

var waterTypeNames = [...]string{
	AboveAtLeast:      "above_at_least",
	AboveAtMost:       "above_at_most",
	BelowAtLeast:      "below_at_least",
	BelowAtMost:       "below_at_most",
	EitherAtLeast:     "either_at_least",
	EitherAtMost:      "either_at_most",
	EitherAtMostAbove: "either_at_most_above",
	EitherAtMostBelow: "either_at_most_below",
}

func (w WaterType) Valid() bool {
	return int(w) < len(waterTypeNames)
}

func (w WaterType) String() string {
	if w.Valid() {
		return waterTypeNames[w]
	}
	return "WaterType(" + strconv.Itoa(int(w)) + ")"
}

// ParseWaterType accepts the snake case name, the CamelCase name or the
// numeric value.
func ParseWaterType(s string) (WaterType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		if w := WaterType(n); w.Valid() {
			return w, nil
		}
		return 0, fmt.Errorf("%w: %s", ErrUnknownWaterType, s)
	}

	want := strings.ToLower(strings.ReplaceAll(s, "_", ""))
	for i, name := range waterTypeNames {
		if strings.ReplaceAll(name, "_", "") == want {
			return WaterType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWaterType, s)
}

func (w WaterType) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWaterType, uint8(w))
	}
	return []byte(w.String()), nil
}

func (w *WaterType) UnmarshalText(text []byte) error {
	v, err := ParseWaterType(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

func (w WaterType) MarshalJSON() ([]byte, error) {
	text, err := w.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (w *WaterType) UnmarshalJSON(bs []byte) error {
	var v any
	if err := json.Unmarshal(bs, &v); err != nil {
		return err
	}
	return w.unmarshal(v)
}

func (w WaterType) MarshalYAML() (any, error) {
	text, err := w.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

func (w *WaterType) UnmarshalYAML(bs []byte) error {
	var v any
	if err := yaml.Unmarshal(bs, &v); err != nil {
		return err
	}
	return w.unmarshal(v)
}

func (w *WaterType) unmarshal(v any) error {
	switch x := v.(type) {
	case string:
		return w.UnmarshalText([]byte(x))
	case float64:
		return w.UnmarshalText([]byte(strconv.FormatFloat(x, 'f', -1, 64)))
	case uint64:
		return w.UnmarshalText([]byte(strconv.FormatUint(x, 10)))
	case int64:
		return w.UnmarshalText([]byte(strconv.FormatInt(x, 10)))
	case int:
		return w.UnmarshalText([]byte(strconv.Itoa(x)))
	}
	return fmt.Errorf("%w: %v", ErrUnknownWaterType, v)
}

func (WaterType) PrepareJSONSchema(schema *jsonschema.Schema) error {
	schema.Type = nil
	schema.AddType(jsonschema.String)
	enum := make([]any, len(waterTypeNames))
	for i, name := range waterTypeNames {
		enum[i] = name
	}
	schema.WithEnum(enum...)
	return nil
}
