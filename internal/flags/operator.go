package flags

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/swaggest/jsonschema-go"
)

// Operator selects how a single pipeline step combines the running flag value
// (left side) with the step's operand (right side).
type Operator uint8

const (
	Enable Operator = iota + 1
	Disable
	Overwrite
	BitwiseOR
	BitwiseAND
	BitwiseXOR
	BitwiseNOT // unary, the operand is ignored
)

var operatorNames = [...]string{
	Enable:     "enable",
	Disable:    "disable",
	Overwrite:  "overwrite",
	BitwiseOR:  "or",
	BitwiseAND: "and",
	BitwiseXOR: "xor",
	BitwiseNOT: "not",
}

var operatorAliases = map[string]Operator{
	"enable":     Enable,
	"disable":    Disable,
	"overwrite":  Overwrite,
	"or":         BitwiseOR,
	"bitwiseor":  BitwiseOR,
	"and":        BitwiseAND,
	"bitwiseand": BitwiseAND,
	"xor":        BitwiseXOR,
	"bitwisexor": BitwiseXOR,
	"not":        BitwiseNOT,
	"bitwisenot": BitwiseNOT,
}

func (o Operator) Valid() bool {
	return o >= Enable && o <= BitwiseNOT
}

func (o Operator) String() string {
	if o.Valid() {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", uint8(o))
}

func ParseOperator(s string) (Operator, error) {
	if op, ok := operatorAliases[normalize(s)]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
}

func (o Operator) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOperator, uint8(o))
	}
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

func (o Operator) MarshalJSON() ([]byte, error) {
	bs, err := o.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(bs))
}

func (o *Operator) UnmarshalJSON(bs []byte) error {
	var s string
	if err := json.Unmarshal(bs, &s); err != nil {
		return fmt.Errorf("failed to decode operator: %w", err)
	}
	return o.UnmarshalText([]byte(s))
}

func (o Operator) MarshalYAML() (any, error) {
	bs, err := o.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

func (o *Operator) UnmarshalYAML(bs []byte) error {
	var s string
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return fmt.Errorf("failed to decode operator: %w", err)
	}
	return o.UnmarshalText([]byte(s))
}

// PrepareJSONSchema accepts the spellings ParseOperator does, ignoring case.
func (Operator) PrepareJSONSchema(schema *jsonschema.Schema) error {
	schema.Type = nil
	schema.AddType(jsonschema.String)
	schema.WithPattern(OperatorPattern)
	return nil
}

const OperatorPattern = `^(?i:enable|disable|overwrite|(bitwise[_ -]?)?(or|and|xor|not))$`
