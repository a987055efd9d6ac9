package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/PadNest/internal/model"
)

// Violation is a cutting move that would burn outside the sheet.
type Violation struct {
	Line   int // index of the move in the parsed program
	Move   GCodeMove
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("move %d to (%.3f, %.3f): %s", v.Line, v.Move.ToX, v.Move.ToY, v.Reason)
}

// boundsTolerance absorbs rounding of printed coordinates.
const boundsTolerance = 0.01

// Verify checks that every cutting move stays on the sheet. Arcs are checked
// by their full extent, which is exact for the full circles the generator
// writes and conservative for partial arcs.
func Verify(moves []GCodeMove, sheet model.Sheet) []Violation {
	var out []Violation
	for i, m := range moves {
		if !m.LaserOn {
			continue
		}
		minX, minY, maxX, maxY := extent(m)
		if minX < -boundsTolerance || minY < -boundsTolerance ||
			maxX > sheet.Width+boundsTolerance || maxY > sheet.Height+boundsTolerance {
			out = append(out, Violation{
				Line:   i,
				Move:   m,
				Reason: fmt.Sprintf("cut extends to [%.2f, %.2f]-[%.2f, %.2f] outside %s", minX, minY, maxX, maxY, sheet),
			})
		}
	}
	return out
}

func extent(m GCodeMove) (minX, minY, maxX, maxY float64) {
	switch m.Type {
	case MoveArcCW, MoveArcCCW:
		cx, cy := m.FromX+m.I, m.FromY+m.J
		r := math.Hypot(m.I, m.J)
		return cx - r, cy - r, cx + r, cy + r
	default:
		return math.Min(m.FromX, m.ToX), math.Min(m.FromY, m.ToY),
			math.Max(m.FromX, m.ToX), math.Max(m.FromY, m.ToY)
	}
}

// FormatViolations produces one human-readable line per violation.
func FormatViolations(vs []Violation) []string {
	var lines []string
	for _, v := range vs {
		lines = append(lines, v.String())
	}
	return lines
}
