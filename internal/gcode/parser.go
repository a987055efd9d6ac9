package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of laser head movement.
type MoveType int

const (
	MoveRapid    MoveType = iota // G0: positioning with the beam off
	MoveFeed                     // G1: straight move at feed rate
	MoveArcCW                    // G2: clockwise arc around I/J
	MoveArcCCW                   // G3: counter-clockwise arc around I/J
)

// GCodeMove represents a single parsed movement from G-code.
type GCodeMove struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	ToX      float64
	ToY      float64
	I        float64 // arc center offset from the start point
	J        float64
	FeedRate float64
	LaserOn  bool // beam state while the move runs
}

var coordRe = regexp.MustCompile(`([XYIJF])([-]?\d+\.?\d*)`)

// ParseGCode parses a G-code string into structured moves. It tracks the
// absolute position, the modal feed rate and whether the beam is on
// (M3/M4 switch it on, M5 off).
func ParseGCode(code string) []GCodeMove {
	var moves []GCodeMove

	curX, curY := 0.0, 0.0
	curFeed := 0.0
	laserOn := false

	for _, line := range strings.Split(code, "\n") {
		line = stripComment(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		word := strings.Fields(upper)[0]

		var moveType MoveType
		switch word {
		case "G0", "G00":
			moveType = MoveRapid
		case "G1", "G01":
			moveType = MoveFeed
		case "G2", "G02":
			moveType = MoveArcCW
		case "G3", "G03":
			moveType = MoveArcCCW
		case "M3", "M03", "M4", "M04":
			laserOn = true
			continue
		case "M5", "M05":
			laserOn = false
			continue
		default:
			continue
		}

		move := GCodeMove{Type: moveType, FromX: curX, FromY: curY, ToX: curX, ToY: curY, LaserOn: laserOn}
		for _, m := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				move.ToX = val
			case "Y":
				move.ToY = val
			case "I":
				move.I = val
			case "J":
				move.J = val
			case "F":
				curFeed = val
			}
		}
		move.FeedRate = curFeed
		if moveType == MoveRapid {
			move.LaserOn = false
		}

		moves = append(moves, move)
		curX, curY = move.ToX, move.ToY
	}

	return moves
}

// stripComment removes semicolon and parenthetical comments.
func stripComment(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, "("); idx >= 0 {
		if end := strings.Index(line, ")"); end > idx {
			line = line[:idx] + line[end+1:]
		} else {
			line = line[:idx]
		}
	}
	return strings.TrimSpace(line)
}

// Length returns the path length of the move. An arc whose end point equals
// its start point is a full circle.
func (m GCodeMove) Length() float64 {
	switch m.Type {
	case MoveArcCW, MoveArcCCW:
		cx, cy := m.FromX+m.I, m.FromY+m.J
		r := math.Hypot(m.I, m.J)
		a0 := math.Atan2(m.FromY-cy, m.FromX-cx)
		a1 := math.Atan2(m.ToY-cy, m.ToX-cx)
		sweep := a1 - a0
		if m.Type == MoveArcCW {
			sweep = -sweep
		}
		for sweep <= 1e-9 {
			sweep += 2 * math.Pi
		}
		return r * sweep
	default:
		return math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
	}
}

// Stats summarizes a parsed program.
type Stats struct {
	CutLength    float64 `json:"cut_length"`    // mm travelled with the beam on
	TravelLength float64 `json:"travel_length"` // mm travelled with the beam off
	Cuts         int     `json:"cuts"`          // cutting moves
	CutMinutes   float64 `json:"cut_minutes"`   // cutting time at the programmed feed
}

// Measure totals cut and travel distance over moves.
func Measure(moves []GCodeMove) Stats {
	var s Stats
	for _, m := range moves {
		l := m.Length()
		if !m.LaserOn {
			s.TravelLength += l
			continue
		}
		s.CutLength += l
		s.Cuts++
		if m.FeedRate > 0 {
			s.CutMinutes += l / m.FeedRate
		}
	}
	return s
}
