package flags

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Names maps the human readable name of a single bit to its value.
type Names[T Bits] map[string]T

// Named is implemented by flag types that publish names for their bits. The
// method is called on the zero value.
type Named[T Bits] interface {
	BitNames() Names[T]
}

func namesOf[T Bits]() Names[T] {
	var zero T
	if n, ok := any(zero).(Named[T]); ok {
		return n.BitNames()
	}
	return nil
}

// Parse combines the named bits into a single value. Hexadecimal literals
// ("0x10") are accepted for bits without a name.
func (n Names[T]) Parse(names ...string) (T, error) {
	var v T
	for _, name := range names {
		bit, err := n.parseOne(name)
		if err != nil {
			return 0, err
		}
		v |= bit
	}
	return v, nil
}

func (n Names[T]) parseOne(name string) (T, error) {
	name = strings.TrimSpace(name)
	if hex, ok := strings.CutPrefix(strings.ToLower(name), "0x"); ok {
		u, err := strconv.ParseUint(hex, 16, 64)
		if err != nil || uint64(T(u)) != u {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
		}
		return T(u), nil
	}

	if bit, ok := n[name]; ok {
		return bit, nil
	}
	for k, bit := range n {
		if strings.EqualFold(k, name) || strings.EqualFold(normalize(k), normalize(name)) {
			return bit, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
}

// Format lists the names of the bits set in v in ascending bit order. Bits
// without a name are rendered as one hexadecimal remainder.
func (n Names[T]) Format(v T) []string {
	names := slices.SortedFunc(maps.Keys(n), func(a, b string) int {
		if n[a] == n[b] {
			return strings.Compare(a, b)
		}
		if n[a] < n[b] {
			return -1
		}
		return 1
	})

	var out []string
	rest := v
	for _, name := range names {
		bit := n[name]
		if bit != 0 && Has(v, bit) && Has(rest, bit) {
			out = append(out, name)
			rest &^= bit
		}
	}
	if rest != 0 {
		out = append(out, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
}
