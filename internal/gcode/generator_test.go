package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/piwi3910/PadNest/internal/model"
)

// newTestSettings returns Settings with predictable laser output.
func newTestSettings() model.Settings {
	s := model.DefaultSettings()
	s.Laser = model.LaserSettings{Profile: "Generic", Power: 800, FeedRate: 600, Passes: 1}
	return s
}

func newTestLayout() model.Layout {
	l := model.NewLayout(model.Felt, model.Sheet{Width: 50, Height: 50}, 1)
	l.Placed = []model.PlacedDisc{
		{Disc: model.Disc{Nominal: 20, Diameter: 19.25}, CX: 10.625, CY: 10.625},
		{Disc: model.Disc{Nominal: 12, Diameter: 11.25}, CX: 26.875, CY: 6.625},
	}
	return l
}

func TestGenerateLayout_StructureAndOrder(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateLayout(newTestLayout())

	if !strings.HasPrefix(code, "; PadNest laser program: felt layout") {
		t.Errorf("unexpected header: %q", strings.SplitN(code, "\n", 2)[0])
	}
	for _, want := range []string{"G90\n", "G21\n", "M3 S800\n", "M5\n", "M2\n", "=== Job complete ==="} {
		if !strings.Contains(code, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	// Hole of the 20 mm pad is cut before its outline; the 12 mm pad has none.
	hole := strings.Index(code, "I1.750 J0.000")
	outline := strings.Index(code, "I9.625 J0.000")
	if hole < 0 || outline < 0 || hole > outline {
		t.Errorf("expected hole (at %d) before outline (at %d)", hole, outline)
	}
	if n := strings.Count(code, "G2 "); n != 3 {
		t.Errorf("expected 3 circles, got %d", n)
	}
}

func TestGenerateLayout_MirrorsY(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateLayout(newTestLayout())

	// First disc: center (10.625, 10.625) becomes machine Y 39.375, start at X 1.0.
	if !strings.Contains(code, "G0 X1.000 Y39.375\n") {
		t.Errorf("expected rapid to mirrored start point, got:\n%s", code)
	}
}

func TestGenerateLayout_Passes(t *testing.T) {
	s := newTestSettings()
	s.Laser.Passes = 3
	code := New(s).GenerateLayout(newTestLayout())
	if n := strings.Count(code, "G2 "); n != 9 {
		t.Errorf("expected 3 circles x 3 passes, got %d arcs", n)
	}
}

func TestGenerateLayout_EngravingComment(t *testing.T) {
	code := New(newTestSettings()).GenerateLayout(newTestLayout())
	if !strings.Contains(code, `label "20"`) {
		t.Error("expected label comment for the 20 mm pad")
	}
	for _, m := range ParseGCode(code) {
		if m.Type == MoveFeed {
			t.Errorf("labels must not produce moves, got %+v", m)
		}
	}
}

func TestGenerateLayout_LinuxCNCComments(t *testing.T) {
	s := newTestSettings()
	s.Laser.Profile = "LinuxCNC"
	code := New(s).GenerateLayout(newTestLayout())
	if !strings.HasPrefix(code, "( PadNest laser program") {
		t.Errorf("expected parenthesis comments, got %q", strings.SplitN(code, "\n", 2)[0])
	}
	if !strings.Contains(code, "M3 S800") {
		t.Error("expected LinuxCNC laser on command")
	}
	if !strings.Contains(code, "X1.0000") {
		t.Error("expected 4 decimal places")
	}
}

func TestGenerateLayout_RoundTripCutLength(t *testing.T) {
	gen := New(newTestSettings())
	l := newTestLayout()

	stats := Measure(ParseGCode(gen.GenerateLayout(l)))

	want := 2 * math.Pi * (19.25/2 + 1.75 + 11.25/2)
	if math.Abs(stats.CutLength-want) > 0.01 {
		t.Errorf("cut length = %.3f, want %.3f", stats.CutLength, want)
	}
	if stats.Cuts != 3 {
		t.Errorf("cuts = %d, want 3", stats.Cuts)
	}
}

func TestGenerateLayout_Empty(t *testing.T) {
	l := model.NewLayout(model.Card, model.Sheet{Width: 100, Height: 100}, 1)
	code := New(newTestSettings()).GenerateLayout(l)
	for _, m := range ParseGCode(code) {
		if m.Type == MoveArcCW || m.Type == MoveArcCCW {
			t.Fatalf("empty layout should not cut, got arc %+v", m)
		}
	}
	if !strings.Contains(code, "M2") {
		t.Error("expected program end")
	}
}

func TestGenerateJob(t *testing.T) {
	job := model.Job{Layouts: []model.Layout{newTestLayout(), newTestLayout()}}
	codes := New(newTestSettings()).GenerateJob(job)
	if len(codes) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(codes))
	}
}

func TestVerify(t *testing.T) {
	gen := New(newTestSettings())
	l := newTestLayout()
	moves := ParseGCode(gen.GenerateLayout(l))

	if vs := Verify(moves, l.Sheet); len(vs) != 0 {
		t.Errorf("generated program should stay on the sheet: %v", FormatViolations(vs))
	}

	small := model.Sheet{Width: 20, Height: 50}
	vs := Verify(moves, small)
	if len(vs) == 0 {
		t.Fatal("expected violations on a narrower sheet")
	}
	if !strings.Contains(FormatViolations(vs)[0], "outside") {
		t.Errorf("unexpected message: %s", FormatViolations(vs)[0])
	}
}
