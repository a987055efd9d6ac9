package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yofu/dxf/drawing"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/gcode"
	"github.com/piwi3910/PadNest/internal/model"
)

// Format is an output file kind written by WriteJob.
type Format string

const (
	FormatSVG   Format = "svg"
	FormatDXF   Format = "dxf"
	FormatPDF   Format = "pdf"
	FormatGCode Format = "gcode"
	FormatJSON  Format = "json"
)

// AllFormats lists every supported format in write order.
var AllFormats = []Format{FormatSVG, FormatDXF, FormatPDF, FormatGCode, FormatJSON}

// ParseFormats parses format names. SVG is always included.
func ParseFormats(names []string) ([]Format, error) {
	seen := map[Format]bool{FormatSVG: true}
	formats := []Format{FormatSVG}
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		if f == "" {
			continue
		}
		if f == "nc" || f == "ngc" {
			f = FormatGCode
		}
		known := false
		for _, k := range AllFormats {
			if f == k {
				known = true
				break
			}
		}
		if !known {
			return nil, apperr.New(apperr.ErrCodeInvalidInput, "unknown output format %q", n)
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

// rendered is one output file computed in memory and not yet written.
type rendered struct {
	path  string
	data  []byte
	dxf   *drawing.Drawing
	label string
}

// FileName returns the output name of material m for base and extension ext.
func FileName(base string, m model.Material, ext string) string {
	return fmt.Sprintf("%s_%s.%s", base, m, ext)
}

// WriteJob renders every layout of job in the requested formats and writes
// them to dir. Every file is rendered in memory first; if any rendering
// fails, nothing is written. A layout with unplaced discs is refused.
// It returns the paths written, in order.
func WriteJob(ctx context.Context, job model.Job, settings model.Settings, dir, base string, formats []Format) ([]string, error) {
	logger := log.FromContext(ctx)

	if strings.TrimSpace(base) == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "output base name is empty")
	}
	want := make(map[Format]bool)
	for _, f := range formats {
		want[f] = true
	}
	want[FormatSVG] = true

	for _, l := range job.Layouts {
		if !l.Complete() {
			return nil, &apperr.UnfittableError{
				Material: l.Material.String(),
				Placed:   len(l.Placed),
				Total:    len(l.Placed) + len(l.Unplaced),
			}
		}
	}

	files, err := renderJob(job, settings, dir, base, want)
	if err != nil {
		return nil, err
	}
	logger.Debug("rendered job", "job", job.ID, "files", len(files))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeIO, err, "create output directory %s", dir)
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if f.dxf != nil {
			err = f.dxf.SaveAs(f.path)
		} else {
			err = os.WriteFile(f.path, f.data, 0644)
		}
		if err != nil {
			return written, apperr.Wrap(apperr.ErrCodeIO, err, "write %s", f.path)
		}
		logger.Info("wrote "+f.label, "path", f.path)
		written = append(written, f.path)
	}
	return written, nil
}

// renderJob computes every output in memory.
func renderJob(job model.Job, settings model.Settings, dir, base string, want map[Format]bool) ([]rendered, error) {
	var files []rendered
	gen := gcode.New(settings)

	for _, l := range job.Layouts {
		name := l.Material.String()

		svg, err := RenderSVG(l, settings)
		if err != nil {
			return nil, fmt.Errorf("render %s svg: %w", name, err)
		}
		files = append(files, rendered{path: filepath.Join(dir, FileName(base, l.Material, "svg")), data: svg, label: name + " svg"})

		if want[FormatDXF] {
			d, err := RenderDXF(l, settings)
			if err != nil {
				return nil, fmt.Errorf("render %s dxf: %w", name, err)
			}
			files = append(files, rendered{path: filepath.Join(dir, FileName(base, l.Material, "dxf")), dxf: d, label: name + " dxf"})
		}

		if want[FormatGCode] {
			code := gen.GenerateLayout(l)
			if vs := gcode.Verify(gcode.ParseGCode(code), l.Sheet); len(vs) > 0 {
				return nil, fmt.Errorf("%s g-code leaves the sheet: %s", name, strings.Join(gcode.FormatViolations(vs), "; "))
			}
			files = append(files, rendered{path: filepath.Join(dir, FileName(base, l.Material, "gcode")), data: []byte(code), label: name + " g-code"})
		}

		if want[FormatJSON] {
			data, err := json.MarshalIndent(l, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encode %s layout: %w", name, err)
			}
			files = append(files, rendered{path: filepath.Join(dir, FileName(base, l.Material, "json")), data: data, label: name + " layout"})
		}
	}

	if want[FormatPDF] && len(job.Layouts) > 0 {
		var buf bytes.Buffer
		if err := ExportPDF(&buf, job, settings); err != nil {
			return nil, fmt.Errorf("render pdf report: %w", err)
		}
		files = append(files, rendered{path: filepath.Join(dir, base+"_report.pdf"), data: buf.Bytes(), label: "pdf report"})
	}
	return files, nil
}

// LoadLayout reads a layout written with FormatJSON, for example after the
// discs were moved in a preview, so it can be drawn again.
func LoadLayout(path string) (model.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Layout{}, apperr.Wrap(apperr.ErrCodeIO, err, "read layout %s", path)
	}
	var l model.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return model.Layout{}, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode layout %s", path)
	}
	if !l.Material.Valid() {
		return model.Layout{}, apperr.New(apperr.ErrCodeInvalidMaterial, "layout %s has no material", path)
	}
	return l, nil
}
