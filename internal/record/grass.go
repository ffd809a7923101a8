// Package record holds the grass record model the rules engine edits and the
// file formats used to exchange records with a host.
package record

import (
	"strings"

	"github.com/grassfps/grassfps/internal/flags"
)

// Record is the view of a record the category filters need.
type Record interface {
	RecordKey() Key
	// Name returns the editor identifier, if the record has one.
	Name() (string, bool)
}

// GrassFlag is the flag field of a grass record.
type GrassFlag uint8

const (
	VertexLighting GrassFlag = 1 << iota
	UniformScaling
	FitToSlope
)

func (GrassFlag) BitNames() flags.Names[GrassFlag] {
	return flags.Names[GrassFlag]{
		"vertex_lighting": VertexLighting,
		"uniform_scaling": UniformScaling,
		"fit_to_slope":    FitToSlope,
	}
}

func (f GrassFlag) String() string {
	names := f.BitNames().Format(f)
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Grass is a single GRAS record.
type Grass struct {
	Key                Key       `json:"key"`
	EditorID           *string   `json:"editor_id,omitempty"`
	Density            uint8     `json:"density"`
	MinSlope           uint8     `json:"min_slope"`
	MaxSlope           uint8     `json:"max_slope"`
	UnitsFromWater     uint16    `json:"units_from_water"`
	UnitsFromWaterType WaterType `json:"units_from_water_type"`
	PositionRange      float32   `json:"position_range"`
	HeightRange        float32   `json:"height_range"`
	ColorRange         float32   `json:"color_range"`
	WavePeriod         float32   `json:"wave_period"`
	Flags              GrassFlag `json:"flags"`
}

func (g *Grass) RecordKey() Key {
	return g.Key
}

func (g *Grass) Name() (string, bool) {
	if g.EditorID == nil {
		return "", false
	}
	return *g.EditorID, true
}

// DeepCopy returns a clone that shares no memory with g.
func (g *Grass) DeepCopy() *Grass {
	if g == nil {
		return nil
	}
	c := *g
	if g.EditorID != nil {
		id := *g.EditorID
		c.EditorID = &id
	}
	return &c
}

func (g *Grass) Equal(other *Grass) bool {
	switch {
	case g == other:
		return true
	case g == nil || other == nil:
		return false
	}

	a, b := *g, *other
	a.EditorID, b.EditorID = nil, nil
	if a != b {
		return false
	}

	an, aok := g.Name()
	bn, bok := other.Name()
	return aok == bok && an == bn
}

// EditorIDOrEmpty is a convenience for display purposes.
func (g *Grass) EditorIDOrEmpty() string {
	name, _ := g.Name()
	return name
}
