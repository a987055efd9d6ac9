// Package export renders nested layouts to drawing files and reports:
// SVG for the cutter, DXF, a PDF cut sheet, QR bag labels and laser G-code.
package export

import (
	"bytes"
	"fmt"
	"io"

	"zappem.net/pub/graphics/svgof"

	"github.com/piwi3910/PadNest/internal/model"
)

// strokeWidth is the outline width used for every cut line, mm.
const strokeWidth = 0.1

// RenderSVG draws one material layout as an SVG document sized to the sheet.
// The layout may have been edited by the caller since GenerateLayout
// returned it; only Placed discs are drawn.
func RenderSVG(l model.Layout, s model.Settings) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, l, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSVG streams the SVG for layout l to w.
func WriteSVG(w io.Writer, l model.Layout, s model.Settings) error {
	if !l.Material.Valid() {
		return fmt.Errorf("cannot draw layout %s: invalid material", l.ID)
	}
	if err := l.Sheet.Validate(); err != nil {
		return err
	}

	st := s.Materials.For(l.Material)
	outline := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", st.Stroke, strokeWidth)
	hole := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", st.HoleStroke, strokeWidth)
	text := fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:%gpx;fill:%s", st.FontSize, st.Engraving)

	canvas := svgof.New(w)
	canvas.Decimals = 3

	width, height := l.Sheet.Width, l.Sheet.Height
	if s.CompatibilityMode {
		canvas.Startview(width, height, 0, 0, width, height)
	} else {
		canvas.StartviewUnit(width, height, "mm", 0, 0, width, height)
	}
	canvas.Gid(l.Material.String())

	for _, p := range l.Placed {
		canvas.Circle(p.CX, p.CY, p.Radius(), outline)
		if model.HasCenterHole(p.Nominal, l.Material, s) {
			canvas.Circle(p.CX, p.CY, s.HoleDiameter/2, hole)
		}
		if e, ok := model.EngravingFor(p, l.Material, s); ok {
			canvas.Text(e.X, e.Y, e.Text, text)
		}
	}

	canvas.Gend()
	canvas.End()
	return nil
}
