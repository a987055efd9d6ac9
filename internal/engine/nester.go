package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/PadNest/internal/model"
)

// Nester places discs on a sheet with a first-fit scanline search.
type Nester struct {
	Spacing float64 // edge-to-edge gap between discs and the border margin, mm
	Step    float64 // candidate grid step, mm
}

// NewNester builds a Nester from the spacing and scan step in settings.
func NewNester(settings model.Settings) *Nester {
	return &Nester{Spacing: settings.Spacing, Step: settings.ScanStep}
}

// Place nests discs on a width x height sheet with a 1mm scan step and
// returns the discs that were placed.
func Place(discs []model.Disc, width, height, spacing float64) []model.PlacedDisc {
	n := &Nester{Spacing: spacing, Step: 1}
	placed, _ := n.Nest(discs, model.Sheet{Width: width, Height: height})
	return placed
}

// Nest sorts discs largest first and places each at the first free grid
// position in row-major order. A disc that fits nowhere is returned in
// unplaced and the run continues with the next one.
func (n *Nester) Nest(discs []model.Disc, sheet model.Sheet) (placed []model.PlacedDisc, unplaced []model.Disc) {
	placed = make([]model.PlacedDisc, 0, len(discs))
	for _, d := range sortBySize(discs) {
		if p, ok := n.position(d, placed, sheet); ok {
			placed = append(placed, p)
		} else {
			unplaced = append(unplaced, d)
		}
	}
	return placed, unplaced
}

// Fits runs the same search as Nest and stops at the first disc that cannot be placed.
func (n *Nester) Fits(discs []model.Disc, sheet model.Sheet) bool {
	placed := make([]model.PlacedDisc, 0, len(discs))
	for _, d := range sortBySize(discs) {
		p, ok := n.position(d, placed, sheet)
		if !ok {
			return false
		}
		placed = append(placed, p)
	}
	return true
}

// sortBySize returns a copy of discs ordered by diameter descending; equal
// diameters keep their input order.
func sortBySize(discs []model.Disc) []model.Disc {
	sorted := make([]model.Disc, len(discs))
	copy(sorted, discs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Diameter > sorted[j].Diameter
	})
	return sorted
}

// position scans top-left corners (x, y) from the margin in Step increments,
// y outer and x inner, and returns the first one whose circle clears every
// placed disc by at least Spacing.
func (n *Nester) position(d model.Disc, placed []model.PlacedDisc, sheet model.Sheet) (model.PlacedDisc, bool) {
	r := d.Radius()
	for row := 0; ; row++ {
		y := n.Spacing + float64(row)*n.Step
		if y+d.Diameter+n.Spacing > sheet.Height {
			return model.PlacedDisc{}, false
		}
		cy := y + r

		for col := 0; ; {
			x := n.Spacing + float64(col)*n.Step
			if x+d.Diameter+n.Spacing > sheet.Width {
				break
			}
			cx := x + r

			blocker := n.firstCollision(cx, cy, r, placed)
			if blocker < 0 {
				return model.PlacedDisc{Disc: d, CX: cx, CY: cy}, true
			}
			// Every column strictly inside the blocker's chord on this row
			// collides too, so resume one column before its far edge.
			col = max(col+1, n.columnPast(placed[blocker], cy, r)-1)
		}
	}
}

// firstCollision returns the index of the first placed disc that a circle of
// radius r at (cx, cy) comes closer than Spacing to, or -1.
func (n *Nester) firstCollision(cx, cy, r float64, placed []model.PlacedDisc) int {
	for i, p := range placed {
		dx := cx - p.CX
		dy := cy - p.CY
		minDist := r + p.Radius() + n.Spacing
		if dx*dx+dy*dy < minDist*minDist {
			return i
		}
	}
	return -1
}

// columnPast returns the first grid column whose center lies right of the
// region where a radius-r circle on row cy would collide with p.
func (n *Nester) columnPast(p model.PlacedDisc, cy, r float64) int {
	minDist := r + p.Radius() + n.Spacing
	dy := cy - p.CY
	half := math.Sqrt(math.Max(0, minDist*minDist-dy*dy))
	x := p.CX + half - r
	return int(math.Ceil((x - n.Spacing) / n.Step))
}
