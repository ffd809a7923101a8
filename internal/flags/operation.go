package flags

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/swaggest/jsonschema-go"
)

// Operation is one step of a Pipeline. The running value is always the left
// operand and Operand the right one.
type Operation[T Bits] struct {
	Operator Operator `json:"operator"`
	Operand  T        `json:"flag,omitempty"`
}

func NewOperation[T Bits](op Operator, operand T) Operation[T] {
	return Operation[T]{Operator: op, Operand: operand}
}

// Apply computes the result of the step for the given running value.
func (op Operation[T]) Apply(current T) (T, error) {
	switch op.Operator {
	case Enable, BitwiseOR:
		return Or(current, op.Operand), nil
	case Disable:
		return And(current, Not(op.Operand)), nil
	case BitwiseAND:
		return And(current, op.Operand), nil
	case BitwiseXOR:
		return Xor(current, op.Operand), nil
	case BitwiseNOT:
		return Not(current), nil
	case Overwrite:
		return op.Operand, nil
	}
	return current, fmt.Errorf("%w: %d", ErrInvalidOperator, uint8(op.Operator))
}

func (op Operation[T]) String() string {
	if op.Operator == BitwiseNOT {
		return op.Operator.String()
	}
	return fmt.Sprintf("%v %v", op.Operator, formatOperand(op.Operand))
}

type rawOperation struct {
	Operator string `mapstructure:"operator"`
	Flag     any    `mapstructure:"flag"`
}

func (op Operation[T]) MarshalYAML() (any, error) {
	m := map[string]any{"operator": op.Operator.String()}
	if op.Operator != BitwiseNOT {
		m["flag"] = formatOperand(op.Operand)
	}
	return m, nil
}

func (op Operation[T]) MarshalJSON() ([]byte, error) {
	v, err := op.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (op *Operation[T]) UnmarshalYAML(bs []byte) error {
	var m map[string]any
	if err := yaml.Unmarshal(bs, &m); err != nil {
		return fmt.Errorf("failed to decode flag operation: %w", err)
	}
	return op.unmarshal(m)
}

func (op *Operation[T]) UnmarshalJSON(bs []byte) error {
	var m map[string]any
	if err := json.Unmarshal(bs, &m); err != nil {
		return fmt.Errorf("failed to decode flag operation: %w", err)
	}
	return op.unmarshal(m)
}

func (op *Operation[T]) unmarshal(m map[string]any) error {
	var raw rawOperation
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &raw,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("failed to decode flag operation: %w", err)
	}

	operator, err := ParseOperator(raw.Operator)
	if err != nil {
		return err
	}

	operand, err := parseOperand[T](raw.Flag)
	if err != nil {
		return err
	}

	*op = Operation[T]{Operator: operator, Operand: operand}
	return nil
}

func (Operation[T]) PrepareJSONSchema(schema *jsonschema.Schema) error {
	name := jsonschema.String.ToSchemaOrBool()
	names := jsonschema.Array.ToSchemaOrBool()
	names.TypeObject.ItemsEns().SchemaOrBool = &name
	integer := jsonschema.Integer.ToSchemaOrBool()

	flag := jsonschema.Schema{}
	flag.OneOf = []jsonschema.SchemaOrBool{integer, name, names}

	schema.WithPropertiesItem("flag", flag.ToSchemaOrBool())
	schema.Required = []string{"operator"}
	return nil
}

func formatOperand[T Bits](v T) any {
	names := namesOf[T]()
	if names == nil {
		return uint64(v)
	}
	return names.Format(v)
}

func parseOperand[T Bits](v any) (T, error) {
	names := namesOf[T]()

	switch x := v.(type) {
	case nil:
		return 0, nil
	case string:
		if u, err := strconv.ParseUint(x, 10, 64); err == nil {
			return fromUint[T](u)
		}
		return names.Parse(x)
	case []any:
		strs := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return 0, fmt.Errorf("%w: %v", ErrUnknownFlag, e)
			}
			strs = append(strs, s)
		}
		return names.Parse(strs...)
	case []string:
		return names.Parse(x...)
	case uint64:
		return fromUint[T](x)
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("%w: %d", ErrUnknownFlag, x)
		}
		return fromUint[T](uint64(x))
	case int:
		if x < 0 {
			return 0, fmt.Errorf("%w: %d", ErrUnknownFlag, x)
		}
		return fromUint[T](uint64(x))
	case float64:
		if x < 0 || x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: %v", ErrUnknownFlag, x)
		}
		return fromUint[T](uint64(x))
	}
	return 0, fmt.Errorf("%w: unsupported operand %T", ErrUnknownFlag, v)
}

func fromUint[T Bits](u uint64) (T, error) {
	if uint64(T(u)) != u {
		return 0, fmt.Errorf("%w: 0x%x exceeds the flag width", ErrUnknownFlag, u)
	}
	return T(u), nil
}
