package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/model"
)

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats([]string{"pdf", "DXF", "nc", "pdf", " "})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatSVG, FormatPDF, FormatDXF, FormatGCode}, formats)

	formats, err = ParseFormats(nil)
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatSVG}, formats)

	_, err = ParseFormats([]string{"png"})
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "pads_exact_size.svg", FileName("pads", model.ExactSize, "svg"))
}

func TestWriteJob_AllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	job := buildTestJob()

	written, err := WriteJob(context.Background(), job, model.DefaultSettings(), dir, "pads", AllFormats)
	require.NoError(t, err)

	want := []string{
		"pads_felt.svg", "pads_felt.dxf", "pads_felt.gcode", "pads_felt.json",
		"pads_card.svg", "pads_card.dxf", "pads_card.gcode", "pads_card.json",
		"pads_report.pdf",
	}
	require.Len(t, written, len(want))
	for i, name := range want {
		assert.Equal(t, filepath.Join(dir, name), written[i])
		info, err := os.Stat(written[i])
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}
}

func TestWriteJob_SVGOnlyByDefault(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteJob(context.Background(), buildTestJob(), model.DefaultSettings(), dir, "pads", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "pads_felt.svg"), filepath.Join(dir, "pads_card.svg")}, written)
}

func TestWriteJob_RefusesIncompleteLayout(t *testing.T) {
	dir := t.TempDir()
	job := buildTestJob()
	job.Layouts[1].Unplaced = []model.Disc{{Nominal: 60, Diameter: 57.25}}

	_, err := WriteJob(context.Background(), job, model.DefaultSettings(), dir, "pads", nil)

	var ue *apperr.UnfittableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "card", ue.Material)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "no file may be written for any material")
}

func TestWriteJob_NothingWrittenWhenRenderingFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	job := buildTestJob()
	// Moved off the sheet: the SVG renders but the laser program fails verification.
	job.Layouts[1].Placed[0].CX = 120

	_, err := WriteJob(context.Background(), job, model.DefaultSettings(), dir, "pads", []Format{FormatGCode})

	require.Error(t, err)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestWriteJob_EmptyBase(t *testing.T) {
	_, err := WriteJob(context.Background(), buildTestJob(), model.DefaultSettings(), t.TempDir(), " ", nil)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}

func TestWriteJob_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := WriteJob(ctx, buildTestJob(), model.DefaultSettings(), t.TempDir(), "pads", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}

func TestLoadLayout_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	job := buildTestJob()
	_, err := WriteJob(context.Background(), job, model.DefaultSettings(), dir, "pads", []Format{FormatJSON})
	require.NoError(t, err)

	l, err := LoadLayout(filepath.Join(dir, "pads_felt.json"))
	require.NoError(t, err)
	assert.Equal(t, job.Layouts[0], l)

	// An edited layout draws like a generated one.
	l.Placed[1].CX += 5
	_, err = RenderSVG(l, model.DefaultSettings())
	assert.NoError(t, err)
}

func TestLoadLayout_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadLayout(filepath.Join(dir, "missing.json"))
	assert.True(t, apperr.Is(err, apperr.ErrCodeIO))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"material":"cork"}`), 0644))
	_, err = LoadLayout(bad)
	assert.Error(t, err)

	none := filepath.Join(dir, "none.json")
	require.NoError(t, os.WriteFile(none, []byte(`{"id":"x"}`), 0644))
	_, err = LoadLayout(none)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidMaterial))
}
