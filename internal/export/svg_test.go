package export

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/PadNest/internal/model"
)

type svgElem struct {
	Name string
	Attr map[string]string
	Text string
}

type svgDoc struct {
	Root  svgElem
	Elems []svgElem // circle and text elements in document order
}

func parseSVG(t *testing.T, data []byte) svgDoc {
	t.Helper()
	var doc svgDoc
	dec := xml.NewDecoder(bytes.NewReader(data))
	var open *svgElem
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err, "svg must be well-formed XML")
		switch el := tok.(type) {
		case xml.StartElement:
			e := svgElem{Name: el.Name.Local, Attr: map[string]string{}}
			for _, a := range el.Attr {
				e.Attr[a.Name.Local] = a.Value
			}
			switch e.Name {
			case "svg":
				doc.Root = e
			case "circle", "text":
				doc.Elems = append(doc.Elems, e)
				open = &doc.Elems[len(doc.Elems)-1]
			}
		case xml.CharData:
			if open != nil && open.Name == "text" {
				open.Text += string(el)
			}
		case xml.EndElement:
			open = nil
		}
	}
	return doc
}

func attrFloat(t *testing.T, e svgElem, name string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(e.Attr[name], 64)
	require.NoError(t, err, "attribute %s of %s", name, e.Name)
	return v
}

func names(elems []svgElem) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.Name
	}
	return out
}

func feltLayout() model.Layout {
	l := model.NewLayout(model.Felt, model.Sheet{Width: 50, Height: 50}, 1)
	l.Placed = []model.PlacedDisc{
		{Disc: model.Disc{Nominal: 20, Diameter: 19.25}, CX: 10.625, CY: 10.625},
		{Disc: model.Disc{Nominal: 12, Diameter: 11.25}, CX: 26.875, CY: 6.625},
	}
	return l
}

func TestRenderSVG_ElementOrder(t *testing.T) {
	data, err := RenderSVG(feltLayout(), model.DefaultSettings())
	require.NoError(t, err)

	doc := parseSVG(t, data)
	assert.Equal(t, []string{"circle", "circle", "text", "circle", "text"}, names(doc.Elems),
		"outline, optional hole, optional label per disc")

	outline := doc.Elems[0]
	assert.InDelta(t, 10.625, attrFloat(t, outline, "cx"), 1e-3)
	assert.InDelta(t, 10.625, attrFloat(t, outline, "cy"), 1e-3)
	assert.InDelta(t, 9.625, attrFloat(t, outline, "r"), 1e-3)
	assert.Contains(t, outline.Attr["style"], "stroke:black")

	hole := doc.Elems[1]
	assert.InDelta(t, 1.75, attrFloat(t, hole, "r"), 1e-3)
	assert.Contains(t, hole.Attr["style"], "stroke:dimgray")

	label := doc.Elems[2]
	assert.Equal(t, "20", strings.TrimSpace(label.Text))
	assert.InDelta(t, 10.625, attrFloat(t, label, "x"), 1e-3)
	assert.Contains(t, label.Attr["style"], "text-anchor:middle")
	assert.Contains(t, label.Attr["style"], "fill:orange")

	assert.Equal(t, "12", strings.TrimSpace(doc.Elems[4].Text))
}

func TestRenderSVG_SizedInMillimeters(t *testing.T) {
	l := feltLayout()
	l.Sheet = model.Sheet{Width: 342.9, Height: 254}

	data, err := RenderSVG(l, model.DefaultSettings())
	require.NoError(t, err)

	root := parseSVG(t, data).Root
	require.True(t, strings.HasSuffix(root.Attr["width"], "mm"), "width %q", root.Attr["width"])
	require.True(t, strings.HasSuffix(root.Attr["height"], "mm"), "height %q", root.Attr["height"])
	w, err := strconv.ParseFloat(strings.TrimSuffix(root.Attr["width"], "mm"), 64)
	require.NoError(t, err)
	assert.InDelta(t, 342.9, w, 1e-3)

	vb := strings.Fields(root.Attr["viewBox"])
	require.Len(t, vb, 4)
	vw, _ := strconv.ParseFloat(vb[2], 64)
	vh, _ := strconv.ParseFloat(vb[3], 64)
	assert.InDelta(t, 342.9, vw, 1e-3)
	assert.InDelta(t, 254, vh, 1e-3)
}

func TestRenderSVG_CompatibilityMode(t *testing.T) {
	s := model.DefaultSettings()
	s.CompatibilityMode = true

	data, err := RenderSVG(feltLayout(), s)
	require.NoError(t, err)

	root := parseSVG(t, data).Root
	assert.NotContains(t, root.Attr["width"], "mm")
	w, err := strconv.ParseFloat(root.Attr["width"], 64)
	require.NoError(t, err)
	assert.InDelta(t, 50, w, 1e-3)
	assert.Len(t, strings.Fields(root.Attr["viewBox"]), 4)
}

func TestRenderSVG_EmptyLayout(t *testing.T) {
	l := model.NewLayout(model.Card, model.Sheet{Width: 100, Height: 80}, 1)

	data, err := RenderSVG(l, model.DefaultSettings())
	require.NoError(t, err)

	doc := parseSVG(t, data)
	assert.Equal(t, "svg", doc.Root.Name)
	assert.Empty(t, doc.Elems)
}

func TestRenderSVG_OversizedLabelOmitted(t *testing.T) {
	s := model.DefaultSettings()
	s.Materials.Felt.FontSize = 6 // fits r=9.625 (limit 7.7), not r=5.625 (limit 4.5)

	data, err := RenderSVG(feltLayout(), s)
	require.NoError(t, err)

	assert.Equal(t, []string{"circle", "circle", "text", "circle"}, names(parseSVG(t, data).Elems))
}

func TestRenderSVG_LeatherHasNoHole(t *testing.T) {
	l := model.NewLayout(model.Leather, model.Sheet{Width: 60, Height: 60}, 1)
	l.Placed = []model.PlacedDisc{{Disc: model.Disc{Nominal: 20, Diameter: 31}, CX: 16.5, CY: 16.5}}

	data, err := RenderSVG(l, model.DefaultSettings())
	require.NoError(t, err)

	doc := parseSVG(t, data)
	assert.Equal(t, []string{"circle", "text"}, names(doc.Elems))
	assert.Contains(t, doc.Elems[0].Attr["style"], "stroke:red")
	// from_outside: baseline at cy - (r - 1) + 0.35 * font
	assert.InDelta(t, 16.5-(15.5-1)+0.7, attrFloat(t, doc.Elems[1], "y"), 1e-3)
}

func TestRenderSVG_EngravingDisabled(t *testing.T) {
	s := model.DefaultSettings()
	s.Materials.Felt.Engrave = false

	data, err := RenderSVG(feltLayout(), s)
	require.NoError(t, err)

	assert.Equal(t, []string{"circle", "circle", "circle"}, names(parseSVG(t, data).Elems))
}

func TestRenderSVG_InvalidMaterial(t *testing.T) {
	l := feltLayout()
	l.Material = model.MaterialUnknown
	_, err := RenderSVG(l, model.DefaultSettings())
	assert.Error(t, err)
}
