package flags_test

import (
	"errors"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/grassfps/grassfps/internal/flags"
)

type testFlag uint8

const (
	flagA testFlag = 1 << iota
	flagB
)

func (testFlag) BitNames() flags.Names[testFlag] {
	return flags.Names[testFlag]{"a": flagA, "b": flagB}
}

func TestAlgebra(t *testing.T) {
	if got := flags.Or(flagA, flagB); got != 3 {
		t.Fatalf("or: got %d", got)
	}
	if got := flags.And(testFlag(3), flagB); got != flagB {
		t.Fatalf("and: got %d", got)
	}
	if got := flags.Xor(testFlag(3), flagA); got != flagB {
		t.Fatalf("xor: got %d", got)
	}
	if got := flags.Not(testFlag(0)); got != 0xFF {
		t.Fatalf("not: got %d", got)
	}
	if got := flags.Not(uint16(0x00FF)); got != 0xFF00 {
		t.Fatalf("not (uint16): got %x", got)
	}
	if !flags.Has(testFlag(3), flagB) || flags.Has(flagA, flagB) {
		t.Fatal("unexpected has result")
	}
}

func TestPipelineApply(t *testing.T) {
	cases := []struct {
		note     string
		pipeline flags.Pipeline[testFlag]
		input    testFlag
		exp      testFlag
		changed  bool
	}{
		{
			note:  "empty pipeline is the identity",
			input: flagA | flagB,
			exp:   flagA | flagB,
		},
		{
			note:     "enable",
			pipeline: flags.Pipeline[testFlag]{flags.NewOperation(flags.Enable, flagA)},
			input:    0,
			exp:      flagA,
			changed:  true,
		},
		{
			note:     "enable already set",
			pipeline: flags.Pipeline[testFlag]{flags.NewOperation(flags.Enable, flagA)},
			input:    flagA,
			exp:      flagA,
		},
		{
			note:     "disable",
			pipeline: flags.Pipeline[testFlag]{flags.NewOperation(flags.Disable, flagA)},
			input:    flagA | flagB,
			exp:      flagB,
			changed:  true,
		},
		{
			note: "enable then disable nets to nothing",
			pipeline: flags.Pipeline[testFlag]{
				flags.NewOperation(flags.Enable, flagA),
				flags.NewOperation(flags.Disable, flagA),
			},
			input: 0,
			exp:   0,
		},
		{
			note:     "overwrite",
			pipeline: flags.Pipeline[testFlag]{flags.NewOperation(flags.Overwrite, flagB)},
			input:    flagA,
			exp:      flagB,
			changed:  true,
		},
		{
			note:     "overwrite with same value",
			pipeline: flags.Pipeline[testFlag]{flags.NewOperation(flags.Overwrite, flagB)},
			input:    flagB,
			exp:      flagB,
		},
		{
			note:     "bitwise and",
			pipeline: flags.Pipeline[testFlag]{flags.NewOperation(flags.BitwiseAND, flagB)},
			input:    flagA | flagB,
			exp:      flagB,
			changed:  true,
		},
		{
			note:     "bitwise xor",
			pipeline: flags.Pipeline[testFlag]{flags.NewOperation(flags.BitwiseXOR, flagA|flagB)},
			input:    flagA,
			exp:      flagB,
			changed:  true,
		},
		{
			note:     "bitwise not ignores operand",
			pipeline: flags.Pipeline[testFlag]{flags.NewOperation(flags.BitwiseNOT, flagA)},
			input:    flagA,
			exp:      0xFE,
			changed:  true,
		},
		{
			note: "double not is a no-op",
			pipeline: flags.Pipeline[testFlag]{
				{Operator: flags.BitwiseNOT},
				{Operator: flags.BitwiseNOT},
			},
			input: flagB,
			exp:   flagB,
		},
		{
			note: "order matters",
			pipeline: flags.Pipeline[testFlag]{
				flags.NewOperation(flags.Disable, flagA),
				flags.NewOperation(flags.Enable, flagA),
			},
			input:   0,
			exp:     flagA,
			changed: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			got, changed, err := tc.pipeline.Apply(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.exp || changed != tc.changed {
				t.Fatalf("expected (%v, %v), got (%v, %v)", tc.exp, tc.changed, got, changed)
			}
		})
	}
}

func TestPipelineOverwriteProperty(t *testing.T) {
	for x := range 256 {
		for _, v := range []testFlag{0, flagA, flagB, 0x80} {
			got, changed, err := flags.Pipeline[testFlag]{flags.NewOperation(flags.Overwrite, v)}.Apply(testFlag(x))
			if err != nil {
				t.Fatal(err)
			}
			if got != v || changed != (v != testFlag(x)) {
				t.Fatalf("overwrite %d on %d: got (%d, %v)", v, x, got, changed)
			}
		}
	}
}

func TestPipelineInvalidOperator(t *testing.T) {
	p := flags.Pipeline[testFlag]{
		flags.NewOperation(flags.Enable, flagA),
		{Operator: 42, Operand: flagB},
	}

	if err := p.Validate(); !errors.Is(err, flags.ErrInvalidOperator) {
		t.Fatalf("expected invalid operator from validate, got %v", err)
	}

	got, changed, err := p.Apply(flagB)
	if !errors.Is(err, flags.ErrInvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}
	if got != flagB || changed {
		t.Fatalf("expected input to be returned unchanged, got (%v, %v)", got, changed)
	}

	if _, err := (flags.Operation[testFlag]{}).Apply(0); !errors.Is(err, flags.ErrInvalidOperator) {
		t.Fatalf("expected zero operator to be invalid, got %v", err)
	}
}

func TestParseOperator(t *testing.T) {
	cases := map[string]flags.Operator{
		"enable":      flags.Enable,
		"Disable":     flags.Disable,
		"OVERWRITE":   flags.Overwrite,
		"or":          flags.BitwiseOR,
		"BitwiseAND":  flags.BitwiseAND,
		"bitwise_xor": flags.BitwiseXOR,
		"not":         flags.BitwiseNOT,
	}
	for s, exp := range cases {
		got, err := flags.ParseOperator(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if got != exp {
			t.Fatalf("%q: expected %v, got %v", s, exp, got)
		}
	}

	if _, err := flags.ParseOperator("nand"); !errors.Is(err, flags.ErrInvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}
}

func TestNames(t *testing.T) {
	names := testFlag(0).BitNames()

	v, err := names.Parse("a", "B", "0x80")
	if err != nil {
		t.Fatal(err)
	}
	if v != flagA|flagB|0x80 {
		t.Fatalf("unexpected value %x", v)
	}

	if diff := cmp.Diff([]string{"a", "b", "0x80"}, names.Format(v)); diff != "" {
		t.Fatalf("unexpected format (-want, +got):\n%s", diff)
	}

	if _, err := names.Parse("c"); !errors.Is(err, flags.ErrUnknownFlag) {
		t.Fatalf("expected unknown flag, got %v", err)
	}
	if _, err := names.Parse("0x100"); !errors.Is(err, flags.ErrUnknownFlag) {
		t.Fatalf("expected out of range literal to fail, got %v", err)
	}
}

func TestPipelineUnmarshalYAML(t *testing.T) {
	var p flags.Pipeline[testFlag]
	err := yaml.Unmarshal([]byte(`
- operator: enable
  flag: a
- operator: BitwiseOR
  flag: [a, b]
- operator: overwrite
  flag: 2
- operator: not
`), &p)
	if err != nil {
		t.Fatal(err)
	}

	exp := flags.Pipeline[testFlag]{
		flags.NewOperation(flags.Enable, flagA),
		flags.NewOperation(flags.BitwiseOR, flagA|flagB),
		flags.NewOperation(flags.Overwrite, flagB),
		{Operator: flags.BitwiseNOT},
	}
	if !p.Equal(exp) {
		t.Fatalf("expected %v, got %v", exp, p)
	}

	bs, err := yaml.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var p2 flags.Pipeline[testFlag]
	if err := yaml.Unmarshal(bs, &p2); err != nil {
		t.Fatal(err)
	}
	if !p2.Equal(exp) {
		t.Fatalf("expected %v after round trip, got %v", exp, p2)
	}
}

func TestOperationUnmarshalErrors(t *testing.T) {
	cases := []string{
		`{operator: nand, flag: a}`,
		`{operator: enable, flag: c}`,
		`{operator: enable, flag: 256}`,
		`{operator: enable, flags: a}`,
	}
	for _, tc := range cases {
		var op flags.Operation[testFlag]
		if err := yaml.Unmarshal([]byte(tc), &op); err == nil {
			t.Fatalf("%s: expected error", tc)
		}
	}
}
