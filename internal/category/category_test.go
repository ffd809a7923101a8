package category_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/grassfps/grassfps/internal/category"
	"github.com/grassfps/grassfps/internal/filter"
	"github.com/grassfps/grassfps/internal/flags"
	"github.com/grassfps/grassfps/internal/numeric"
	"github.com/grassfps/grassfps/internal/record"
	"github.com/grassfps/grassfps/internal/setting"
)

func ptr[T any](v T) *T { return &v }

func grass(mod func(*record.Grass)) *record.Grass {
	g := &record.Grass{Key: record.NewKey(0x1000, "Skyrim.esm")}
	if mod != nil {
		mod(g)
	}
	return g
}

func TestApply(t *testing.T) {
	cases := []struct {
		note     string
		category category.Category
		policy   numeric.Overflow
		input    *record.Grass
		exp      *record.Grass
		changed  bool
	}{
		{
			note: "default category",
			category: category.Category{
				Identifier:    "Default",
				Filter:        filter.Filter{ApplyToAll: true},
				Density:       setting.Enable[int16](80),
				MaxSlope:      setting.Enable[int16](90),
				PositionRange: setting.Enable[float32](1.0),
			},
			input: grass(nil),
			exp: grass(func(g *record.Grass) {
				g.Density = 80
				g.MaxSlope = 90
				g.PositionRange = 1.0
			}),
			changed: true,
		},
		{
			note:     "nothing enabled",
			category: category.Category{Identifier: "Empty"},
			input:    grass(func(g *record.Grass) { g.Density = 5 }),
			exp:      grass(func(g *record.Grass) { g.Density = 5 }),
		},
		{
			note: "overwrite with equal values",
			category: category.Category{
				Density:    setting.Enable[int16](5),
				WavePeriod: setting.Enable[float32](100),
			},
			input: grass(func(g *record.Grass) { g.Density = 5; g.WavePeriod = 100 }),
			exp:   grass(func(g *record.Grass) { g.Density = 5; g.WavePeriod = 100 }),
		},
		{
			note: "later field unchanged does not reset earlier change",
			category: category.Category{
				Density:    setting.Enable[int16](6),
				WavePeriod: setting.Enable[float32](100),
			},
			input:   grass(func(g *record.Grass) { g.Density = 5; g.WavePeriod = 100 }),
			exp:     grass(func(g *record.Grass) { g.Density = 6; g.WavePeriod = 100 }),
			changed: true,
		},
		{
			note: "only last field changes",
			category: category.Category{
				Density: setting.Enable[int16](5),
				Flags: flags.Pipeline[record.GrassFlag]{
					flags.NewOperation(flags.Enable, record.FitToSlope),
				},
			},
			input: grass(func(g *record.Grass) { g.Density = 5 }),
			exp: grass(func(g *record.Grass) {
				g.Density = 5
				g.Flags = record.FitToSlope
			}),
			changed: true,
		},
		{
			note: "offset wave period",
			category: category.Category{
				Identifier: "WindyGrass",
				OffsetMode: true,
				WavePeriod: setting.Enable[float32](300),
			},
			input:   grass(func(g *record.Grass) { g.WavePeriod = 100 }),
			exp:     grass(func(g *record.Grass) { g.WavePeriod = 400 }),
			changed: true,
		},
		{
			note: "offset negative delta",
			category: category.Category{
				OffsetMode:     true,
				Density:        setting.Enable[int16](-20),
				UnitsFromWater: setting.Enable[int32](-100),
				HeightRange:    setting.Enable[float32](-0.5),
			},
			input: grass(func(g *record.Grass) {
				g.Density = 50
				g.UnitsFromWater = 1000
				g.HeightRange = 1
			}),
			exp: grass(func(g *record.Grass) {
				g.Density = 30
				g.UnitsFromWater = 900
				g.HeightRange = 0.5
			}),
			changed: true,
		},
		{
			note: "offset zero delta",
			category: category.Category{
				OffsetMode: true,
				Density:    setting.Enable[int16](0),
				ColorRange: setting.Enable[float32](0),
			},
			input: grass(func(g *record.Grass) { g.Density = 50 }),
			exp:   grass(func(g *record.Grass) { g.Density = 50 }),
		},
		{
			note: "offset ignores disabled fields",
			category: category.Category{
				OffsetMode: true,
				Density:    setting.Value[int16]{Value: 10},
			},
			input: grass(func(g *record.Grass) { g.Density = 50 }),
			exp:   grass(func(g *record.Grass) { g.Density = 50 }),
		},
		{
			note: "offset saturates",
			category: category.Category{
				OffsetMode:     true,
				Density:        setting.Enable[int16](100),
				MinSlope:       setting.Enable[int16](-100),
				UnitsFromWater: setting.Enable[int32](70000),
			},
			input: grass(func(g *record.Grass) { g.Density = 200; g.MinSlope = 10 }),
			exp: grass(func(g *record.Grass) {
				g.Density = 255
				g.MinSlope = 0
				g.UnitsFromWater = 65535
			}),
			changed: true,
		},
		{
			note: "offset truncates",
			category: category.Category{
				OffsetMode: true,
				Density:    setting.Enable[int16](100),
			},
			policy:  numeric.Truncate,
			input:   grass(func(g *record.Grass) { g.Density = 200 }),
			exp:     grass(func(g *record.Grass) { g.Density = 44 }),
			changed: true,
		},
		{
			note: "overwrite saturates",
			category: category.Category{
				Density:  setting.Enable[int16](300),
				MaxSlope: setting.Enable[int16](-1),
			},
			input:   grass(func(g *record.Grass) { g.MaxSlope = 10 }),
			exp:     grass(func(g *record.Grass) { g.Density = 255 }),
			changed: true,
		},
		{
			note: "water type resolves in offset mode",
			category: category.Category{
				OffsetMode:         true,
				UnitsFromWaterType: setting.Enable(record.EitherAtMostBelow),
			},
			input:   grass(nil),
			exp:     grass(func(g *record.Grass) { g.UnitsFromWaterType = record.EitherAtMostBelow }),
			changed: true,
		},
		{
			note: "flags in offset mode use the pipeline",
			category: category.Category{
				OffsetMode: true,
				Flags: flags.Pipeline[record.GrassFlag]{
					flags.NewOperation(flags.Disable, record.VertexLighting),
					flags.NewOperation(flags.Enable, record.UniformScaling),
				},
			},
			input:   grass(func(g *record.Grass) { g.Flags = record.VertexLighting | record.FitToSlope }),
			exp:     grass(func(g *record.Grass) { g.Flags = record.UniformScaling | record.FitToSlope }),
			changed: true,
		},
		{
			note: "flag pipeline with no net effect",
			category: category.Category{
				Flags: flags.Pipeline[record.GrassFlag]{
					flags.NewOperation(flags.Enable, record.VertexLighting),
					flags.NewOperation(flags.Disable, record.VertexLighting),
				},
			},
			input: grass(nil),
			exp:   grass(nil),
		},
		{
			note: "all fields overwrite",
			category: category.Category{
				Density:            setting.Enable[int16](1),
				MinSlope:           setting.Enable[int16](2),
				MaxSlope:           setting.Enable[int16](3),
				UnitsFromWater:     setting.Enable[int32](4),
				UnitsFromWaterType: setting.Enable(record.BelowAtMost),
				PositionRange:      setting.Enable[float32](5),
				HeightRange:        setting.Enable[float32](6),
				ColorRange:         setting.Enable[float32](7),
				WavePeriod:         setting.Enable[float32](8),
				Flags: flags.Pipeline[record.GrassFlag]{
					flags.NewOperation(flags.Overwrite, record.UniformScaling),
				},
			},
			input: grass(func(g *record.Grass) { g.EditorID = ptr("Grass") }),
			exp: &record.Grass{
				Key:                record.NewKey(0x1000, "Skyrim.esm"),
				EditorID:           ptr("Grass"),
				Density:            1,
				MinSlope:           2,
				MaxSlope:           3,
				UnitsFromWater:     4,
				UnitsFromWaterType: record.BelowAtMost,
				PositionRange:      5,
				HeightRange:        6,
				ColorRange:         7,
				WavePeriod:         8,
				Flags:              record.UniformScaling,
			},
			changed: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			changed, err := tc.category.Apply(tc.input, tc.policy)
			if err != nil {
				t.Fatal(err)
			}
			if changed != tc.changed {
				t.Fatalf("expected changed=%v, got %v", tc.changed, changed)
			}
			if diff := cmp.Diff(tc.exp, tc.input); diff != "" {
				t.Fatalf("unexpected record (-want,+got):\n%s", diff)
			}
		})
	}
}

func TestApplyOverflowError(t *testing.T) {
	c := category.Category{
		Identifier: "Too much",
		OffsetMode: true,
		Density:    setting.Enable[int16](100),
	}

	_, err := c.Apply(grass(func(g *record.Grass) { g.Density = 200 }), numeric.Fail)
	if !errors.Is(err, numeric.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if exp := `category "Too much": density: `; len(err.Error()) < len(exp) || err.Error()[:len(exp)] != exp {
		t.Fatalf("expected error to name category and field, got %q", err)
	}
}

func TestApplyInvalidOperator(t *testing.T) {
	c := category.Category{
		Flags: flags.Pipeline[record.GrassFlag]{{Operator: 0, Operand: record.FitToSlope}},
	}

	if _, err := c.Apply(grass(nil), numeric.Saturate); !errors.Is(err, flags.ErrInvalidOperator) {
		t.Fatalf("expected invalid operator, got %v", err)
	}
	if err := c.Validate(); !errors.Is(err, flags.ErrInvalidOperator) {
		t.Fatalf("expected invalid operator from validate, got %v", err)
	}
}

func TestOverwriteIdempotent(t *testing.T) {
	c := category.Category{
		Density:       setting.Enable[int16](80),
		MaxSlope:      setting.Enable[int16](90),
		PositionRange: setting.Enable[float32](1),
		Flags: flags.Pipeline[record.GrassFlag]{
			flags.NewOperation(flags.BitwiseXOR, record.VertexLighting),
			flags.NewOperation(flags.Enable, record.VertexLighting),
		},
	}

	once := grass(nil)
	if changed, err := c.Apply(once, numeric.Saturate); err != nil || !changed {
		t.Fatalf("expected first application to change the record, got %v, %v", changed, err)
	}

	twice := once.DeepCopy()
	changed, err := c.Apply(twice, numeric.Saturate)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("expected second application to report no change")
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second application changed the record (-once,+twice):\n%s", diff)
	}
}

func TestHasAnyEnabledValues(t *testing.T) {
	if (&category.Category{OffsetMode: true, Filter: filter.Filter{ApplyToAll: true}}).HasAnyEnabledValues() {
		t.Fatal("expected no enabled values")
	}
	if !(&category.Category{ColorRange: setting.Enable[float32](0)}).HasAnyEnabledValues() {
		t.Fatal("expected enabled color range")
	}
	c := &category.Category{Flags: flags.Pipeline[record.GrassFlag]{flags.NewOperation(flags.BitwiseNOT, record.GrassFlag(0))}}
	if !c.HasAnyEnabledValues() {
		t.Fatal("expected flag operations to count")
	}
}

func TestValidateWaterType(t *testing.T) {
	c := category.Category{UnitsFromWaterType: setting.Enable(record.WaterType(9))}
	if err := c.Validate(); !errors.Is(err, record.ErrUnknownWaterType) {
		t.Fatalf("expected unknown water type, got %v", err)
	}
	c.UnitsFromWaterType.Enabled = false
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestEnabledFields(t *testing.T) {
	c := category.Category{
		WavePeriod: setting.Enable[float32](1),
		Density:    setting.Enable[int16](1),
	}
	if diff := cmp.Diff([]string{"density", "wave_period"}, c.EnabledFields()); diff != "" {
		t.Fatal(diff)
	}
	if c.Policy() != "overwrite" {
		t.Fatalf("unexpected policy %q", c.Policy())
	}
}
