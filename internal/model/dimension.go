package model

import (
	"math"
	"strconv"

	apperr "github.com/piwi3910/PadNest/internal/errors"
)

// WrapPoint is one breakpoint of the leather wrap curve.
type WrapPoint struct {
	Size float64 `json:"size" toml:"size"` // nominal pad size, mm
	Wrap float64 `json:"wrap" toml:"wrap"` // wrap allowance at that size, mm
}

// StandardWrapCurve is the canonical leather back-wrap curve:
//
//	size <= 10       -> 1.3
//	10 < size <= 15  -> 1.3 + (size-10)*0.14
//	15 < size <= 40  -> 2.0 + (size-15)*0.06
//	size > 40        -> 3.5
var StandardWrapCurve = []WrapPoint{
	{Size: 10, Wrap: 1.3},
	{Size: 15, Wrap: 2.0},
	{Size: 40, Wrap: 3.5},
}

// Wrap evaluates a piecewise-linear wrap curve at size. The curve is flat
// before the first and after the last breakpoint, and returns the breakpoint
// value exactly when size lands on one.
func Wrap(size float64, curve []WrapPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	if size <= curve[0].Size {
		return curve[0].Wrap
	}
	for i := 1; i < len(curve); i++ {
		hi := curve[i]
		if size > hi.Size {
			continue
		}
		if size == hi.Size {
			return hi.Wrap
		}
		lo := curve[i-1]
		return lo.Wrap + (size-lo.Size)*(hi.Wrap-lo.Wrap)/(hi.Size-lo.Size)
	}
	return curve[len(curve)-1].Wrap
}

func validateWrapCurve(curve []WrapPoint) error {
	if len(curve) == 0 {
		return apperr.New(apperr.ErrCodeInvalidConfiguration, "wrap_curve needs at least one point")
	}
	for i, p := range curve {
		if !finite(p.Size) || !nonNegative(p.Wrap) {
			return apperr.New(apperr.ErrCodeInvalidConfiguration, "wrap_curve point %d is not a valid number pair", i)
		}
		if i == 0 {
			continue
		}
		prev := curve[i-1]
		if p.Size <= prev.Size {
			return apperr.New(apperr.ErrCodeInvalidConfiguration, "wrap_curve sizes must increase (%g after %g)", p.Size, prev.Size)
		}
		if p.Wrap < prev.Wrap {
			return apperr.New(apperr.ErrCodeInvalidConfiguration, "wrap_curve must not decrease (%g after %g)", p.Wrap, prev.Wrap)
		}
	}
	return nil
}

// RoundToHalf rounds x to the nearest 0.5, ties to even.
func RoundToHalf(x float64) float64 {
	return math.RoundToEven(x*2) / 2
}

// diameterRule derives a disc diameter from a nominal size.
type diameterRule func(size float64, s Settings) float64

var diameterRules = map[Material]diameterRule{
	Felt: func(size float64, s Settings) float64 {
		return size - s.FeltOffset
	},
	Card: func(size float64, s Settings) float64 {
		return size - (s.FeltOffset + s.CardToFeltOffset)
	},
	Leather: func(size float64, s Settings) float64 {
		raw := size + 2*(s.FeltThicknessMM()+Wrap(size, s.WrapCurve)*s.WrapMultiplier)
		return RoundToHalf(raw)
	},
	ExactSize: func(size float64, _ Settings) float64 {
		return size
	},
}

// ComputeDiameter maps a nominal pad size to the disc diameter cut for material m.
func ComputeDiameter(size float64, m Material, s Settings) (float64, error) {
	rule, ok := diameterRules[m]
	if !ok {
		return 0, apperr.New(apperr.ErrCodeInvalidMaterial, "material %q does not produce discs", m)
	}
	d := rule(size, s)
	if !(d > 0) {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "pad %s is too small for %s (diameter %g mm)", FormatSize(size), m, d)
	}
	return d, nil
}

// ExpandDiscs turns a pad list into one Disc per unit of quantity, in input order.
func ExpandDiscs(pads []PadSpec, m Material, s Settings) ([]Disc, error) {
	total := 0
	for _, p := range pads {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		total += p.Quantity
		if total > MaxDiscs {
			return nil, apperr.New(apperr.ErrCodeInvalidInput, "pad list expands to more than %d discs", MaxDiscs)
		}
	}

	discs := make([]Disc, 0, total)
	for _, p := range pads {
		d, err := ComputeDiameter(p.Size, m, s)
		if err != nil {
			return nil, err
		}
		for i := 0; i < p.Quantity; i++ {
			discs = append(discs, Disc{Nominal: p.Size, Diameter: d})
		}
	}
	return discs, nil
}

// FormatSize renders a size with one decimal and no trailing zeros ("20", "12.5").
func FormatSize(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
