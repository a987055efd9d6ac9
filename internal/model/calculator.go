package model

import "math"

// Usage holds material statistics for one layout.
type Usage struct {
	DiscCount     int     `json:"disc_count"`
	UnplacedCount int     `json:"unplaced_count"`
	DiscArea      float64 `json:"disc_area"`   // total area of placed discs (sq mm)
	SheetArea     float64 `json:"sheet_area"`  // sheet area (sq mm)
	Utilization   float64 `json:"utilization"` // DiscArea / SheetArea, percent
	UsedWidth     float64 `json:"used_width"`  // rightmost disc edge (mm)
	UsedHeight    float64 `json:"used_height"` // lowest disc edge (mm)
}

// CalculateUsage computes how much of the sheet the placed discs cover.
func CalculateUsage(l Layout) Usage {
	u := Usage{
		DiscCount:     len(l.Placed),
		UnplacedCount: len(l.Unplaced),
		SheetArea:     l.Sheet.Area(),
	}
	for _, p := range l.Placed {
		r := p.Radius()
		u.DiscArea += math.Pi * r * r
		u.UsedWidth = math.Max(u.UsedWidth, p.CX+r)
		u.UsedHeight = math.Max(u.UsedHeight, p.CY+r)
	}
	if u.SheetArea > 0 {
		u.Utilization = u.DiscArea / u.SheetArea * 100.0
	}
	return u
}

// EstimateSheets gives a lower bound on how many sheets a disc set needs,
// counting each disc as the square it occupies including spacing. It is a
// hint for the user when a layout does not fit, not a nesting result.
func EstimateSheets(discs []Disc, sheet Sheet, spacing float64) int {
	usable := (sheet.Width - spacing) * (sheet.Height - spacing)
	if usable <= 0 {
		return 0
	}
	var need float64
	for _, d := range discs {
		side := d.Diameter + spacing
		need += side * side
	}
	return int(math.Ceil(need / usable))
}
