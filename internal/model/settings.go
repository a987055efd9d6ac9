package model

import (
	"math"
	"slices"
	"strings"

	apperr "github.com/piwi3910/PadNest/internal/errors"
)

// Unit is a length unit accepted on input.
type Unit string

const (
	UnitMM   Unit = "mm"
	UnitInch Unit = "in"
)

const mmPerInch = 25.4

// ToMM converts v expressed in u to millimeters. An empty unit means mm.
func (u Unit) ToMM(v float64) float64 {
	if u == UnitInch {
		return v * mmPerInch
	}
	return v
}

// Valid reports whether u is a known unit (empty counts as mm).
func (u Unit) Valid() bool {
	return u == "" || u == UnitMM || u == UnitInch
}

// EngraveMode selects how the label anchor is measured from the disc center.
type EngraveMode string

const (
	EngraveFromOutside EngraveMode = "from_outside" // offset inward from the outer edge
	EngraveFromInside  EngraveMode = "from_inside"  // offset outward from the hole edge
	EngraveCentered    EngraveMode = "centered"     // midway between hole and edge
)

// MaterialStyle holds the per-layer drawing and policy constants.
type MaterialStyle struct {
	Stroke        string      `json:"stroke" toml:"stroke"`                 // outline color
	HoleStroke    string      `json:"hole_stroke" toml:"hole_stroke"`       // center hole color
	Engraving     string      `json:"engraving" toml:"engraving"`           // label fill color
	Engrave       bool        `json:"engrave" toml:"engrave"`               // draw the size label
	EngraveMode   EngraveMode `json:"engrave_mode" toml:"engrave_mode"`     // label anchor mode
	EngraveOffset float64     `json:"engrave_offset" toml:"engrave_offset"` // mm, meaning depends on mode
	FontSize      float64     `json:"font_size" toml:"font_size"`           // mm
	CenterHole    bool        `json:"center_hole" toml:"center_hole"`       // layer may carry a center hole
}

// MaterialStyles is the per-material lookup table of MaterialStyle.
type MaterialStyles struct {
	Felt      MaterialStyle `json:"felt" toml:"felt"`
	Card      MaterialStyle `json:"card" toml:"card"`
	Leather   MaterialStyle `json:"leather" toml:"leather"`
	ExactSize MaterialStyle `json:"exact_size" toml:"exact_size"`
}

// For returns the style of material m. Unknown materials get the zero style.
func (ms MaterialStyles) For(m Material) MaterialStyle {
	switch m {
	case Felt:
		return ms.Felt
	case Card:
		return ms.Card
	case Leather:
		return ms.Leather
	case ExactSize:
		return ms.ExactSize
	default:
		return MaterialStyle{}
	}
}

// LaserSettings configures G-code output for a laser cutter.
type LaserSettings struct {
	Profile  string  `json:"profile" toml:"profile"`     // G-code dialect, see LaserProfiles
	Power    int     `json:"power" toml:"power"`         // S value while cutting
	FeedRate float64 `json:"feed_rate" toml:"feed_rate"` // mm/min
	Passes   int     `json:"passes" toml:"passes"`       // repeats per circle
}

// Settings is the flat configuration record for one generation request.
// It is resolved once (defaults plus overrides) and never mutated by the core.
type Settings struct {
	// Dimension rules
	FeltOffset        float64     `json:"felt_offset" toml:"felt_offset"`                 // mm removed from nominal for felt
	CardToFeltOffset  float64     `json:"card_to_felt_offset" toml:"card_to_felt_offset"` // extra mm removed for card
	FeltThickness     float64     `json:"felt_thickness" toml:"felt_thickness"`           // in FeltThicknessUnit
	FeltThicknessUnit Unit        `json:"felt_thickness_unit" toml:"felt_thickness_unit"` // "mm" or "in"
	WrapMultiplier    float64     `json:"wrap_multiplier" toml:"wrap_multiplier"`         // scales the wrap curve
	WrapCurve         []WrapPoint `json:"wrap_curve" toml:"wrap_curve"`                   // leather wrap breakpoints

	// Hole policy
	MinHoleSize  float64 `json:"min_hole_size" toml:"min_hole_size"` // smallest nominal size with a hole
	HoleDiameter float64 `json:"hole_diameter" toml:"hole_diameter"` // 0 disables holes

	// Nesting
	Spacing  float64 `json:"spacing" toml:"spacing"`     // edge-to-edge gap and border margin, mm
	ScanStep float64 `json:"scan_step" toml:"scan_step"` // candidate grid step, mm

	// Output
	CompatibilityMode bool           `json:"compatibility_mode" toml:"compatibility_mode"` // unitless SVG with viewBox
	Materials         MaterialStyles `json:"materials" toml:"materials"`
	Laser             LaserSettings  `json:"laser" toml:"laser"`
}

// DefaultSettings returns the configuration used when nothing is overridden.
func DefaultSettings() Settings {
	return Settings{
		FeltOffset:        0.75,
		CardToFeltOffset:  2.0,
		FeltThickness:     0.125,
		FeltThicknessUnit: UnitInch,
		WrapMultiplier:    1.0,
		WrapCurve:         append([]WrapPoint(nil), StandardWrapCurve...),
		MinHoleSize:       16.5,
		HoleDiameter:      3.5,
		Spacing:           1.0,
		ScanStep:          1.0,
		CompatibilityMode: false,
		Materials: MaterialStyles{
			Felt:      defaultStyle("black", EngraveCentered, 0, true),
			Card:      defaultStyle("blue", EngraveCentered, 0, true),
			Leather:   defaultStyle("red", EngraveFromOutside, 1.0, false),
			ExactSize: defaultStyle("green", EngraveCentered, 0, true),
		},
		Laser: LaserSettings{
			Profile:  "Grbl",
			Power:    1000,
			FeedRate: 600,
			Passes:   1,
		},
	}
}

func defaultStyle(stroke string, mode EngraveMode, offset float64, hole bool) MaterialStyle {
	return MaterialStyle{
		Stroke:        stroke,
		HoleStroke:    "dimgray",
		Engraving:     "orange",
		Engrave:       true,
		EngraveMode:   mode,
		EngraveOffset: offset,
		FontSize:      2.0,
		CenterHole:    hole,
	}
}

// FeltThicknessMM returns the felt thickness converted to mm.
func (s Settings) FeltThicknessMM() float64 {
	return s.FeltThicknessUnit.ToMM(s.FeltThickness)
}

// Validate fails fast on any constant the core cannot work with.
func (s Settings) Validate() error {
	checks := []struct {
		name  string
		value float64
		ok    func(float64) bool
		want  string
	}{
		{"felt_offset", s.FeltOffset, nonNegative, "non-negative"},
		{"card_to_felt_offset", s.CardToFeltOffset, nonNegative, "non-negative"},
		{"felt_thickness", s.FeltThickness, nonNegative, "non-negative"},
		{"wrap_multiplier", s.WrapMultiplier, nonNegative, "non-negative"},
		{"min_hole_size", s.MinHoleSize, nonNegative, "non-negative"},
		{"hole_diameter", s.HoleDiameter, nonNegative, "non-negative"},
		{"spacing", s.Spacing, positive, "positive"},
		{"scan_step", s.ScanStep, positive, "positive"},
	}
	for _, c := range checks {
		if !c.ok(c.value) {
			return apperr.New(apperr.ErrCodeInvalidConfiguration, "%s must be %s, got %g", c.name, c.want, c.value)
		}
	}

	if !s.FeltThicknessUnit.Valid() {
		return apperr.New(apperr.ErrCodeInvalidConfiguration, "felt_thickness_unit must be mm or in, got %q", s.FeltThicknessUnit)
	}
	if err := validateWrapCurve(s.WrapCurve); err != nil {
		return err
	}

	for _, m := range Materials {
		st := s.Materials.For(m)
		if !st.Engrave {
			continue
		}
		if !positive(st.FontSize) {
			return apperr.New(apperr.ErrCodeInvalidConfiguration, "%s font_size must be positive, got %g", m, st.FontSize)
		}
		if !finite(st.EngraveOffset) {
			return apperr.New(apperr.ErrCodeInvalidConfiguration, "%s engrave_offset is not a number", m)
		}
		switch st.EngraveMode {
		case EngraveFromOutside, EngraveFromInside, EngraveCentered:
		default:
			return apperr.New(apperr.ErrCodeInvalidConfiguration, "%s engrave_mode %q is not one of from_outside, from_inside, centered", m, st.EngraveMode)
		}
	}

	if s.Laser.Passes < 0 || s.Laser.Power < 0 || !nonNegative(s.Laser.FeedRate) {
		return apperr.New(apperr.ErrCodeInvalidConfiguration, "laser power, feed rate and passes must be non-negative")
	}
	if names := GetProfileNames(); !slices.Contains(names, s.Laser.Profile) {
		return apperr.New(apperr.ErrCodeInvalidConfiguration, "laser profile %q is not one of %s", s.Laser.Profile, strings.Join(names, ", "))
	}
	return nil
}

func finite(v float64) bool      { return !math.IsNaN(v) && !math.IsInf(v, 0) }
func positive(v float64) bool    { return finite(v) && v > 0 }
func nonNegative(v float64) bool { return finite(v) && v >= 0 }
