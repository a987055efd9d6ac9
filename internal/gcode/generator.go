// Package gcode turns nested layouts into laser cutter programs and reads
// them back to measure and verify the toolpath.
package gcode

import (
	"fmt"
	"strings"

	"github.com/piwi3910/PadNest/internal/model"
)

// Generator produces laser G-code from a nested layout.
type Generator struct {
	Settings model.Settings
	profile  model.LaserProfile
}

func New(settings model.Settings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.Laser.Profile),
	}
}

// Profile returns the dialect the generator writes.
func (g *Generator) Profile() model.LaserProfile {
	return g.profile
}

// GenerateLayout produces a program that cuts every placed disc of l. Center
// holes are cut before their disc outline so the pad is still held by the
// sheet while the hole is burned. Machine Y points up, so coordinates are
// mirrored against the sheet height.
func (g *Generator) GenerateLayout(l model.Layout) string {
	var b strings.Builder

	g.writeHeader(&b, l)

	for i, p := range l.Placed {
		g.writeDisc(&b, l, p, i+1)
	}

	g.writeFooter(&b)
	return b.String()
}

// GenerateJob produces one program per layout, in job order.
func (g *Generator) GenerateJob(job model.Job) []string {
	var codes []string
	for _, l := range job.Layouts {
		codes = append(codes, g.GenerateLayout(l))
	}
	return codes
}

func (g *Generator) writeHeader(b *strings.Builder, l model.Layout) {
	p := g.profile
	laser := g.Settings.Laser
	usage := model.CalculateUsage(l)

	b.WriteString(g.comment(fmt.Sprintf("PadNest laser program: %s layout %s", l.Material, l.ID)))
	b.WriteString(g.comment(fmt.Sprintf("Sheet: %.1f x %.1f mm", l.Sheet.Width, l.Sheet.Height)))
	b.WriteString(g.comment(fmt.Sprintf("Discs: %d, Utilization: %.1f%%", usage.DiscCount, usage.Utilization)))
	b.WriteString(g.comment(fmt.Sprintf("Power: S%d, Feed: %.0f mm/min, Passes: %d", laser.Power, laser.FeedRate, g.passes())))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))
	for _, code := range g.profile.EndCode {
		b.WriteString(code + "\n")
	}
}

func (g *Generator) writeDisc(b *strings.Builder, l model.Layout, p model.PlacedDisc, n int) {
	b.WriteString(g.comment(fmt.Sprintf("--- Disc %d: pad %s, %s mm ---",
		n, model.FormatSize(p.Nominal), g.format(p.Diameter))))

	y := l.Sheet.Height - p.CY
	if model.HasCenterHole(p.Nominal, l.Material, g.Settings) {
		g.writeCircle(b, p.CX, y, g.Settings.HoleDiameter/2)
	}
	g.writeCircle(b, p.CX, y, p.Radius())

	if e, ok := model.EngravingFor(p, l.Material, g.Settings); ok {
		b.WriteString(g.comment(fmt.Sprintf("label %q at X%s Y%s, %s mm",
			e.Text, g.format(e.X), g.format(l.Sheet.Height-e.Y), g.format(e.FontSize))))
	}
}

// writeCircle cuts a full circle clockwise, starting and ending at its
// leftmost point.
func (g *Generator) writeCircle(b *strings.Builder, cx, cy, r float64) {
	p := g.profile
	laser := g.Settings.Laser
	x0 := cx - r

	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(x0), g.format(cy)))
	b.WriteString(fmt.Sprintf(p.LaserOn+"\n", laser.Power))
	for pass := 0; pass < g.passes(); pass++ {
		b.WriteString(fmt.Sprintf("%s X%s Y%s I%s J%s F%s\n",
			p.ArcCW, g.format(x0), g.format(cy), g.format(r), g.format(0), g.format(laser.FeedRate)))
	}
	b.WriteString(p.LaserOff + "\n")
}

func (g *Generator) passes() int {
	return max(1, g.Settings.Laser.Passes)
}

func (g *Generator) comment(text string) string {
	p := g.profile
	return p.CommentPrefix + " " + text + p.CommentSuffix + "\n"
}

func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	return fmt.Sprintf(format, v)
}
