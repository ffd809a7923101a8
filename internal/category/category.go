// Package category implements a named bundle of grass field edits together
// with the filter that selects the records it applies to.
package category

import (
	"fmt"

	"github.com/grassfps/grassfps/internal/filter"
	"github.com/grassfps/grassfps/internal/flags"
	"github.com/grassfps/grassfps/internal/numeric"
	"github.com/grassfps/grassfps/internal/record"
	"github.com/grassfps/grassfps/internal/setting"
)

// Category edits the grass fields that are enabled. In offset mode numeric
// fields are added to the current value instead of replacing it; the water
// type and flags behave the same in both modes.
//
// Byte sized fields are configured as int16 and UnitsFromWater as int32 so
// negative offsets can be expressed.
type Category struct {
	Identifier         string                           `json:"identifier,omitempty" description:"Name used in logs to tell which categories applied to a record."`
	OffsetMode         bool                             `json:"offset_mode,omitempty" description:"Add values to the existing ones instead of overwriting them."`
	Filter             filter.Filter                    `json:"filter,omitempty" description:"Records this category applies to."`
	Density            setting.Value[int16]             `json:"density,omitempty" description:"GRAS DATA density. Final value must be within 0..255."`
	MinSlope           setting.Value[int16]             `json:"min_slope,omitempty" description:"GRAS DATA minimum slope. Final value must be within 0..255."`
	MaxSlope           setting.Value[int16]             `json:"max_slope,omitempty" description:"GRAS DATA maximum slope. Final value must be within 0..255."`
	UnitsFromWater     setting.Value[int32]             `json:"units_from_water,omitempty" description:"GRAS DATA units from water. Final value must be within 0..65535."`
	UnitsFromWaterType setting.Value[record.WaterType]  `json:"units_from_water_type,omitempty" description:"GRAS DATA units from water type. Always overwritten, also in offset mode."`
	PositionRange      setting.Value[float32]           `json:"position_range,omitempty" description:"GRAS DATA position range."`
	HeightRange        setting.Value[float32]           `json:"height_range,omitempty" description:"GRAS DATA height range."`
	ColorRange         setting.Value[float32]           `json:"color_range,omitempty" description:"GRAS DATA color range."`
	WavePeriod         setting.Value[float32]           `json:"wave_period,omitempty" description:"GRAS DATA wave period."`
	Flags              flags.Pipeline[record.GrassFlag] `json:"flags,omitempty" description:"Operations applied in order to the GRAS DATA flags."`

	_ struct{} `additionalProperties:"false"`
}

// Apply edits rec in place and reports whether any field changed. Every field
// is evaluated even after an earlier one changed. policy decides how integer
// results that do not fit their field are stored.
func (c *Category) Apply(rec *record.Grass, policy numeric.Overflow) (bool, error) {
	var changed bool

	steps := []struct {
		field string
		apply func() (bool, error)
	}{
		{"density", func() (bool, error) { return assignInteger(&rec.Density, c.Density, c.OffsetMode, policy) }},
		{"min_slope", func() (bool, error) { return assignInteger(&rec.MinSlope, c.MinSlope, c.OffsetMode, policy) }},
		{"max_slope", func() (bool, error) { return assignInteger(&rec.MaxSlope, c.MaxSlope, c.OffsetMode, policy) }},
		{"units_from_water", func() (bool, error) {
			return assignInteger(&rec.UnitsFromWater, c.UnitsFromWater, c.OffsetMode, policy)
		}},
		{"units_from_water_type", func() (bool, error) { return resolve(&rec.UnitsFromWaterType, c.UnitsFromWaterType), nil }},
		{"position_range", func() (bool, error) { return c.float(&rec.PositionRange, c.PositionRange), nil }},
		{"height_range", func() (bool, error) { return c.float(&rec.HeightRange, c.HeightRange), nil }},
		{"color_range", func() (bool, error) { return c.float(&rec.ColorRange, c.ColorRange), nil }},
		{"wave_period", func() (bool, error) { return c.float(&rec.WavePeriod, c.WavePeriod), nil }},
		{"flags", func() (bool, error) {
			v, ok, err := c.Flags.Apply(rec.Flags)
			if err != nil {
				return false, err
			}
			rec.Flags = v
			return ok, nil
		}},
	}

	for _, step := range steps {
		ok, err := step.apply()
		if err != nil {
			return changed, fmt.Errorf("category %q: %s: %w", c.Identifier, step.field, err)
		}
		changed = changed || ok
	}

	return changed, nil
}

func (c *Category) float(field *float32, s setting.Value[float32]) bool {
	if c.OffsetMode {
		if !s.Enabled {
			return false
		}
		old := *field
		*field += s.Value
		return *field != old
	}
	return resolve(field, s)
}

// assignInteger widens the field into the setting's type, applies the setting
// and narrows the result back.
func assignInteger[F, S numeric.Integer](field *F, s setting.Value[S], offset bool, policy numeric.Overflow) (bool, error) {
	if !s.Enabled {
		return false, nil
	}

	var (
		v   F
		err error
	)
	if offset {
		v, err = numeric.Offset(*field, int64(s.Value), policy)
	} else {
		wide, _ := s.Resolve(S(*field))
		v, err = numeric.Narrow[F](int64(wide), policy)
	}
	if err != nil {
		return false, err
	}

	old := *field
	*field = v
	return v != old, nil
}

func resolve[T comparable](field *T, s setting.Value[T]) bool {
	v, changed := s.Resolve(*field)
	*field = v
	return changed
}

// HasAnyEnabledValues reports whether applying the category can change a
// record at all.
func (c *Category) HasAnyEnabledValues() bool {
	return c.Density.Enabled ||
		c.MinSlope.Enabled ||
		c.MaxSlope.Enabled ||
		c.UnitsFromWater.Enabled ||
		c.UnitsFromWaterType.Enabled ||
		c.PositionRange.Enabled ||
		c.HeightRange.Enabled ||
		c.ColorRange.Enabled ||
		c.WavePeriod.Enabled ||
		len(c.Flags) > 0
}

// Validate reports settings that would make Apply fail for every record.
func (c *Category) Validate() error {
	if c.UnitsFromWaterType.Enabled && !c.UnitsFromWaterType.Value.Valid() {
		return fmt.Errorf("category %q: units_from_water_type: %w: %d", c.Identifier, record.ErrUnknownWaterType, c.UnitsFromWaterType.Value)
	}
	if err := c.Flags.Validate(); err != nil {
		return fmt.Errorf("category %q: flags: %w", c.Identifier, err)
	}
	return nil
}

func (c *Category) Equal(other *Category) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.Identifier == other.Identifier &&
		c.OffsetMode == other.OffsetMode &&
		c.Filter.Equal(&other.Filter) &&
		c.Density.Equal(other.Density) &&
		c.MinSlope.Equal(other.MinSlope) &&
		c.MaxSlope.Equal(other.MaxSlope) &&
		c.UnitsFromWater.Equal(other.UnitsFromWater) &&
		c.UnitsFromWaterType.Equal(other.UnitsFromWaterType) &&
		c.PositionRange.Equal(other.PositionRange) &&
		c.HeightRange.Equal(other.HeightRange) &&
		c.ColorRange.Equal(other.ColorRange) &&
		c.WavePeriod.Equal(other.WavePeriod) &&
		c.Flags.Equal(other.Flags)
}

// Policy names the update policy for listings.
func (c *Category) Policy() string {
	if c.OffsetMode {
		return "offset"
	}
	return "overwrite"
}

// EnabledFields lists the configured fields in record order.
func (c *Category) EnabledFields() []string {
	var fields []string
	add := func(name string, enabled bool) {
		if enabled {
			fields = append(fields, name)
		}
	}
	add("density", c.Density.Enabled)
	add("min_slope", c.MinSlope.Enabled)
	add("max_slope", c.MaxSlope.Enabled)
	add("units_from_water", c.UnitsFromWater.Enabled)
	add("units_from_water_type", c.UnitsFromWaterType.Enabled)
	add("position_range", c.PositionRange.Enabled)
	add("height_range", c.HeightRange.Enabled)
	add("color_range", c.ColorRange.Enabled)
	add("wave_period", c.WavePeriod.Enabled)
	add("flags", len(c.Flags) > 0)
	return fields
}
