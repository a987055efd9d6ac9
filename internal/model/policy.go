package model

import "sort"

// nominalHoleRadius keeps a centered label off the pure centroid when the disc has no hole.
const nominalHoleRadius = 1.75

// baselineNudge shifts the glyph baseline so text is visually centered on its anchor.
const baselineNudge = 0.35

// oversizeRatio is the largest font size, relative to the disc radius, that still gets a label.
const oversizeRatio = 0.8

// ShouldHaveCenterHole reports whether a pad of the given nominal size gets a hole.
func ShouldHaveCenterHole(nominal, holeDiameter float64, s Settings) bool {
	return holeDiameter > 0 && nominal >= s.MinHoleSize
}

// HasCenterHole applies ShouldHaveCenterHole together with the layer's own switch.
func HasCenterHole(nominal float64, m Material, s Settings) bool {
	return s.Materials.For(m).CenterHole && ShouldHaveCenterHole(nominal, s.HoleDiameter, s)
}

// LabelFits reports whether a label of fontSize fits a disc of the given radius.
func LabelFits(fontSize, radius float64) bool {
	return fontSize < radius*oversizeRatio
}

// EngravingAnchorY returns the vertical anchor of a label for a disc centered at cy.
// holeR is 0 when the disc has no hole.
func EngravingAnchorY(mode EngraveMode, cy, r, holeR, value float64) float64 {
	switch mode {
	case EngraveFromOutside:
		return cy - (r - value)
	case EngraveFromInside:
		return cy - (holeR + value)
	default:
		if holeR == 0 {
			holeR = nominalHoleRadius
		}
		return cy - (r+holeR)/2
	}
}

// Engraving is a positioned size label.
type Engraving struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"` // baseline
	FontSize float64 `json:"font_size"`
}

// EngravingFor returns the label for a placed disc, or false when the layer
// does not engrave or the label is too large for the disc.
func EngravingFor(p PlacedDisc, m Material, s Settings) (Engraving, bool) {
	st := s.Materials.For(m)
	r := p.Radius()
	if !st.Engrave || !LabelFits(st.FontSize, r) {
		return Engraving{}, false
	}
	holeR := 0.0
	if HasCenterHole(p.Nominal, m, s) {
		holeR = s.HoleDiameter / 2
	}
	y := EngravingAnchorY(st.EngraveMode, p.CY, r, holeR, st.EngraveOffset)
	return Engraving{
		Text:     FormatSize(p.Nominal),
		X:        p.CX,
		Y:        y + st.FontSize*baselineNudge,
		FontSize: st.FontSize,
	}, true
}

// Advisory names a pad size whose label will be left off.
type Advisory struct {
	Material Material `json:"material"`
	Size     float64  `json:"size"`
	Diameter float64  `json:"diameter"`
	FontSize float64  `json:"font_size"`
}

// OversizedEngravings lists, once per distinct size and in ascending size
// order, the pads whose label is too large for their disc in material m.
func OversizedEngravings(pads []PadSpec, m Material, s Settings) ([]Advisory, error) {
	st := s.Materials.For(m)
	if !st.Engrave {
		return nil, nil
	}
	seen := make(map[float64]bool)
	var out []Advisory
	for _, p := range pads {
		if seen[p.Size] {
			continue
		}
		seen[p.Size] = true
		d, err := ComputeDiameter(p.Size, m, s)
		if err != nil {
			return nil, err
		}
		if !LabelFits(st.FontSize, d/2) {
			out = append(out, Advisory{Material: m, Size: p.Size, Diameter: d, FontSize: st.FontSize})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size < out[j].Size })
	return out, nil
}
