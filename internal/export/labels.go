package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/PadNest/internal/model"
)

// LabelInfo holds the data encoded into each bag label's QR code.
type LabelInfo struct {
	Size      float64            `json:"size_mm"`
	Quantity  int                `json:"qty"`
	Diameters map[string]float64 `json:"diameters_mm"` // keyed by material name
	JobID     string             `json:"job,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectLabelInfos returns one label per distinct pad size, ascending, with
// quantities of repeated sizes summed and the disc diameter of every
// material.
func CollectLabelInfos(pads []model.PadSpec, materials []model.Material, settings model.Settings, jobID string) ([]LabelInfo, error) {
	bySize := make(map[float64]*LabelInfo)
	var labels []*LabelInfo
	for _, p := range pads {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if l, ok := bySize[p.Size]; ok {
			l.Quantity += p.Quantity
			continue
		}
		l := &LabelInfo{Size: p.Size, Quantity: p.Quantity, Diameters: make(map[string]float64), JobID: jobID}
		for _, m := range materials {
			d, err := model.ComputeDiameter(p.Size, m, settings)
			if err != nil {
				return nil, err
			}
			l.Diameters[m.String()] = d
		}
		bySize[p.Size] = l
		labels = append(labels, l)
	}

	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Size < labels[j].Size })
	out := make([]LabelInfo, len(labels))
	for i, l := range labels {
		out[i] = *l
	}
	return out, nil
}

// ExportLabels writes a PDF of QR-coded bag labels to w, one per pad size.
// Labels are laid out on a standard label sheet format (Avery 5160 /
// 3 columns x 10 rows on US Letter).
func ExportLabels(w io.Writer, labels []LabelInfo, materials []model.Material) error {
	if len(labels) == 0 {
		return fmt.Errorf("no pads to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label, materials, i); err != nil {
			return fmt.Errorf("failed to render label for pad %s: %w", model.FormatSize(label.Size), err)
		}
	}

	return pdf.Output(w)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo, materials []model.Material, n int) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_pad_%d", n)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("Pad %s mm  x%d", model.FormatSize(info.Size), info.Quantity), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(80, 80, 80)
	lineY := y + labelPadding + 5.5
	for _, m := range materials {
		d, ok := info.Diameters[m.String()]
		if !ok {
			continue
		}
		pdf.SetXY(textX, lineY)
		pdf.CellFormat(textW, 3, fmt.Sprintf("%s: %s mm", m, model.FormatSize(d)), "", 1, "L", false, 0, "")
		lineY += 3.2
	}

	if info.JobID != "" {
		pdf.SetFont("Helvetica", "I", 5)
		pdf.SetXY(textX, y+labelHeight-labelPadding-2.5)
		pdf.CellFormat(textW, 2.5, "job "+info.JobID, "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
