package flags

import (
	"fmt"
	"slices"
	"strings"
)

// Pipeline is an ordered list of operations folded left to right over a flag
// value. The zero value is the identity transform.
type Pipeline[T Bits] []Operation[T]

// Apply runs every step in order, starting with existing. changed compares the
// net result against existing, not individual steps.
func (p Pipeline[T]) Apply(existing T) (T, bool, error) {
	if len(p) == 0 {
		return existing, false, nil
	}

	val := existing
	for i, op := range p {
		next, err := op.Apply(val)
		if err != nil {
			return existing, false, fmt.Errorf("flag operation %d: %w", i, err)
		}
		val = next
	}

	return val, val != existing, nil
}

// Validate reports the first step with an unrecognized operator.
func (p Pipeline[T]) Validate() error {
	for i, op := range p {
		if !op.Operator.Valid() {
			return fmt.Errorf("flag operation %d: %w: %d", i, ErrInvalidOperator, uint8(op.Operator))
		}
	}
	return nil
}

func (p Pipeline[T]) Equal(other Pipeline[T]) bool {
	return slices.Equal(p, other)
}

func (p Pipeline[T]) String() string {
	steps := make([]string, len(p))
	for i, op := range p {
		steps[i] = op.String()
	}
	return strings.Join(steps, ", ")
}
