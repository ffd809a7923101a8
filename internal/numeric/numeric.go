package numeric

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/swaggest/jsonschema-go"
)

var ErrOutOfRange = errors.New("value out of range")

type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// Overflow decides what happens when a widened value does not fit the
// narrower field it is written back to.
type Overflow uint8

const (
	// Saturate clamps to the nearest representable bound.
	Saturate Overflow = iota
	// Truncate keeps the low-order bits, like an unchecked conversion.
	Truncate
	// Fail returns ErrOutOfRange.
	Fail
)

var overflowNames = [...]string{
	Saturate: "saturate",
	Truncate: "truncate",
	Fail:     "error",
}

func (o Overflow) String() string {
	if int(o) < len(overflowNames) {
		return overflowNames[o]
	}
	return fmt.Sprintf("Overflow(%d)", uint8(o))
}

func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "saturate":
		return Saturate, nil
	case "truncate":
		return Truncate, nil
	case "error", "fail":
		return Fail, nil
	}
	return 0, fmt.Errorf("unknown overflow policy %q", s)
}

func (o Overflow) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Overflow) UnmarshalText(text []byte) error {
	v, err := ParseOverflow(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o Overflow) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Overflow) UnmarshalJSON(bs []byte) error {
	var s string
	if err := json.Unmarshal(bs, &s); err != nil {
		return err
	}
	return o.UnmarshalText([]byte(s))
}

func (o Overflow) MarshalYAML() (any, error) {
	return o.String(), nil
}

func (o *Overflow) UnmarshalYAML(bs []byte) error {
	var s string
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return err
	}
	return o.UnmarshalText([]byte(s))
}

func (Overflow) PrepareJSONSchema(schema *jsonschema.Schema) error {
	schema.Type = nil
	schema.AddType(jsonschema.String)
	schema.WithEnum("saturate", "truncate", "error")
	return nil
}

// Bounds returns the smallest and largest value representable by T.
func Bounds[T Integer]() (lo, hi int64) {
	var zero T
	switch any(zero).(type) {
	case int8:
		return math.MinInt8, math.MaxInt8
	case int16:
		return math.MinInt16, math.MaxInt16
	case int32:
		return math.MinInt32, math.MaxInt32
	case int64:
		return math.MinInt64, math.MaxInt64
	case uint8:
		return 0, math.MaxUint8
	case uint16:
		return 0, math.MaxUint16
	case uint32:
		return 0, math.MaxUint32
	}

	// Named types do not match the cases above, derive the bounds from the
	// conversion behaviour instead.
	minusOne := int64(-1)
	if T(minusOne) > 0 {
		hi := int64(T(minusOne))
		return 0, hi
	}
	for _, bits := range []uint{8, 16, 32} {
		hi := int64(1)<<(bits-1) - 1
		if int64(T(hi+1)) != hi+1 {
			return -hi - 1, hi
		}
	}
	return math.MinInt64, math.MaxInt64
}

// Narrow converts a widened accumulator back to T using the given policy.
func Narrow[T Integer](v int64, policy Overflow) (T, error) {
	lo, hi := Bounds[T]()
	if v >= lo && v <= hi {
		return T(v), nil
	}

	switch policy {
	case Truncate:
		return T(v), nil
	case Fail:
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, v, lo, hi)
	}

	if v < lo {
		return T(lo), nil
	}
	return T(hi), nil
}

// Offset widens current, adds delta and narrows the sum back to T.
func Offset[T Integer](current T, delta int64, policy Overflow) (T, error) {
	return Narrow[T](addSaturating(int64(current), delta), policy)
}

func addSaturating(a, b int64) int64 {
	sum := a + b
	switch {
	case a > 0 && b > 0 && sum < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && sum >= 0:
		return math.MinInt64
	}
	return sum
}
