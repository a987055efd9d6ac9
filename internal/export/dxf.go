package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/PadNest/internal/model"
)

// glyphAspect approximates the width of one character relative to the text
// height for the default DXF font.
const glyphAspect = 0.6

// RenderDXF builds a DXF drawing of one material layout. Outlines, holes and
// engravings go to separate layers named after the material so a cutter can
// assign power settings per layer. DXF has the Y axis pointing up, so
// coordinates are mirrored against the sheet height.
func RenderDXF(l model.Layout, s model.Settings) (*drawing.Drawing, error) {
	if !l.Material.Valid() {
		return nil, fmt.Errorf("cannot draw layout %s: invalid material", l.ID)
	}
	if err := l.Sheet.Validate(); err != nil {
		return nil, err
	}

	st := s.Materials.For(l.Material)
	name := l.Material.String()
	outlineLayer := name
	holeLayer := name + "_hole"
	engraveLayer := name + "_engraving"

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(outlineLayer, aciColor(st.Stroke), dxf.DefaultLineType, true); err != nil {
		return nil, fmt.Errorf("add layer %s: %w", outlineLayer, err)
	}
	if _, err := d.AddLayer(holeLayer, aciColor(st.HoleStroke), dxf.DefaultLineType, false); err != nil {
		return nil, fmt.Errorf("add layer %s: %w", holeLayer, err)
	}
	if _, err := d.AddLayer(engraveLayer, aciColor(st.Engraving), dxf.DefaultLineType, false); err != nil {
		return nil, fmt.Errorf("add layer %s: %w", engraveLayer, err)
	}

	h := l.Sheet.Height
	for _, p := range l.Placed {
		if err := d.ChangeLayer(outlineLayer); err != nil {
			return nil, err
		}
		if _, err := d.Circle(p.CX, h-p.CY, 0, p.Radius()); err != nil {
			return nil, fmt.Errorf("disc at (%.2f, %.2f): %w", p.CX, p.CY, err)
		}

		if model.HasCenterHole(p.Nominal, l.Material, s) {
			if err := d.ChangeLayer(holeLayer); err != nil {
				return nil, err
			}
			if _, err := d.Circle(p.CX, h-p.CY, 0, s.HoleDiameter/2); err != nil {
				return nil, fmt.Errorf("hole at (%.2f, %.2f): %w", p.CX, p.CY, err)
			}
		}

		if e, ok := model.EngravingFor(p, l.Material, s); ok {
			if err := d.ChangeLayer(engraveLayer); err != nil {
				return nil, err
			}
			// DXF text is left-aligned at its insertion point.
			x := e.X - float64(len(e.Text))*e.FontSize*glyphAspect/2
			if _, err := d.Text(e.Text, x, h-e.Y, 0, e.FontSize); err != nil {
				return nil, fmt.Errorf("label %s: %w", e.Text, err)
			}
		}
	}
	return d, nil
}
