package export

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/yofu/dxf/color"
	"golang.org/x/image/colornames"
)

// parseColor resolves an SVG color name or #rrggbb string. Unknown values
// fall back to black so a typo never aborts a report.
func parseColor(s string) colorful.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		out, _ := colorful.MakeColor(c)
		return out
	}
	if c, err := colorful.Hex(s); err == nil {
		return c
	}
	return colorful.Color{}
}

// rgb255 returns the 0-255 channels of an SVG color for fpdf.
func rgb255(s string) (r, g, b int) {
	cr, cg, cb := parseColor(s).RGB255()
	return int(cr), int(cg), int(cb)
}

// aciPalette holds the AutoCAD color indexes a layer color is snapped to.
// Index 7 plots black on a white sheet.
var aciPalette = []struct {
	number color.ColorNumber
	rgb    colorful.Color
}{
	{color.Red, colorful.Color{R: 1}},
	{color.Yellow, colorful.Color{R: 1, G: 1}},
	{color.Green, colorful.Color{G: 1}},
	{color.Cyan, colorful.Color{G: 1, B: 1}},
	{color.Blue, colorful.Color{B: 1}},
	{color.Magenta, colorful.Color{R: 1, B: 1}},
	{color.White, colorful.Color{}},
	{color.ColorNumber(9), colorful.Color{R: 0.5, G: 0.5, B: 0.5}},
	{color.ColorNumber(30), colorful.Color{R: 1, G: 0.5}},
}

// aciColor returns the palette entry closest to an SVG color in Lab space.
func aciColor(s string) color.ColorNumber {
	c := parseColor(s)
	best := aciPalette[0]
	bestDist := c.DistanceLab(best.rgb)
	for _, p := range aciPalette[1:] {
		if d := c.DistanceLab(p.rgb); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best.number
}
