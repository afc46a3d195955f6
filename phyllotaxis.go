package grove

import (
	"fmt"
	"math"
	"strings"
)

// GoldenAngle is the phyllotaxis constant in degrees. Successive spiral
// slots rotated by this angle never stack, which is what keeps the idea
// spiral readable at any count.
const GoldenAngle = 137.5077640500378

// PlacementConfig parameterizes the spiral. Validate before use; Place does
// it for you and is strict about it, since the function is pure and has no
// side effects to roll back.
type PlacementConfig struct {
	GoldenAngle float64 // degrees between successive slots
	RadiusScale float64 // radial growth per sqrt(index), [0.1, 100]
	CenterX     float64 // spiral origin; [-10000, 10000] is the sane range
	CenterY     float64
	MinRadius   float64 // innermost ring radius, [0, 10000]
	MaxIdeas    int     // exclusive index bound, [0, 1000]
}

// DefaultPlacementConfig returns the configuration the organizer ships with.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		GoldenAngle: GoldenAngle,
		RadiusScale: 10,
		CenterX:     400,
		CenterY:     300,
		MinRadius:   50,
		MaxIdeas:    1000,
	}
}

// Placement is one computed spiral slot.
type Placement struct {
	X, Y   float64
	Angle  float64 // degrees, [0, 360)
	Radius float64
	Index  int
}

// FieldViolation names one invalid config field.
type FieldViolation struct {
	Field  string
	Value  float64
	Reason string
}

// ConfigError reports every violated field of a PlacementConfig, not just
// the first, so a caller can fix its config in one round trip.
type ConfigError struct {
	Violations []FieldViolation
}

func (e *ConfigError) Error() string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = fmt.Sprintf("%s: %s (got %v)", v.Field, v.Reason, v.Value)
	}
	return "grove: invalid placement config: " + strings.Join(fields, "; ")
}

// IndexError reports a spiral index outside [0, MaxIdeas).
type IndexError struct {
	Index    int
	MaxIdeas int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("grove: placement index %d out of range [0, %d)", e.Index, e.MaxIdeas)
}

// Validate checks every field and collects every violation. Centers outside
// [-10000, 10000] are returned as soft warnings rather than errors; NaN or
// Inf anywhere is always an error.
func (c PlacementConfig) Validate() (warnings []string, err error) {
	var bad []FieldViolation

	check := func(field string, value float64, min, max float64) {
		switch {
		case math.IsNaN(value) || math.IsInf(value, 0):
			bad = append(bad, FieldViolation{field, value, "must be a finite number"})
		case value < min || value > max:
			bad = append(bad, FieldViolation{field, value,
				fmt.Sprintf("must be in [%g, %g]", min, max)})
		}
	}

	if math.IsNaN(c.GoldenAngle) || math.IsInf(c.GoldenAngle, 0) {
		bad = append(bad, FieldViolation{"goldenAngle", c.GoldenAngle, "must be a finite number"})
	}
	check("radiusScale", c.RadiusScale, 0.1, 100)
	check("minRadius", c.MinRadius, 0, 10000)
	if c.MaxIdeas < 0 || c.MaxIdeas > 1000 {
		bad = append(bad, FieldViolation{"maxIdeas", float64(c.MaxIdeas), "must be in [0, 1000]"})
	}

	for _, center := range []struct {
		field string
		value float64
	}{{"centerX", c.CenterX}, {"centerY", c.CenterY}} {
		if math.IsNaN(center.value) || math.IsInf(center.value, 0) {
			bad = append(bad, FieldViolation{center.field, center.value, "must be a finite number"})
		} else if center.value < -10000 || center.value > 10000 {
			warnings = append(warnings,
				fmt.Sprintf("%s %g is outside the expected [-10000, 10000] range", center.field, center.value))
		}
	}

	if len(bad) > 0 {
		return warnings, &ConfigError{Violations: bad}
	}
	return warnings, nil
}

// Place computes the spiral slot for index:
//
//	angle  = (goldenAngle × index) mod 360
//	radius = max(minRadius, minRadius + sqrt(index) × radiusScale)
//	(x, y) = center + radius · (cos angle, sin angle)
//
// Pure and deterministic: identical inputs always produce identical output.
// An invalid config fails with *ConfigError listing every violated field; an
// index outside [0, MaxIdeas) fails with *IndexError.
func Place(index int, cfg PlacementConfig) (Placement, error) {
	if _, err := cfg.Validate(); err != nil {
		return Placement{}, err
	}
	if index < 0 || index >= cfg.MaxIdeas {
		return Placement{}, &IndexError{Index: index, MaxIdeas: cfg.MaxIdeas}
	}

	angle := math.Mod(cfg.GoldenAngle*float64(index), 360)
	if angle < 0 {
		angle += 360
	}
	radius := cfg.MinRadius + math.Sqrt(float64(index))*cfg.RadiusScale
	if radius < cfg.MinRadius {
		radius = cfg.MinRadius
	}
	rad := angle * math.Pi / 180
	return Placement{
		X:      cfg.CenterX + radius*math.Cos(rad),
		Y:      cfg.CenterY + radius*math.Sin(rad),
		Angle:  angle,
		Radius: radius,
		Index:  index,
	}, nil
}
