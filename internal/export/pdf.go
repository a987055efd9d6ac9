package export

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/PadNest/internal/gcode"
	"github.com/piwi3910/PadNest/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	summaryQR    = 35.0
)

// ExportPDF writes a cut sheet report for job to w: one page per material
// layout with a scaled drawing, followed by a summary page.
func ExportPDF(w io.Writer, job model.Job, settings model.Settings) error {
	if len(job.Layouts) == 0 {
		return fmt.Errorf("no layouts to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle("PadNest cut sheet "+job.ID, true)

	for _, l := range job.Layouts {
		pdf.AddPage()
		renderLayoutPage(pdf, l, settings)
	}

	pdf.AddPage()
	if err := renderSummaryPage(pdf, job, settings); err != nil {
		return err
	}

	return pdf.Output(w)
}

// renderLayoutPage draws a single material layout on the current PDF page.
func renderLayoutPage(pdf *fpdf.Fpdf, l model.Layout, settings model.Settings) {
	usage := model.CalculateUsage(l)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %d discs on %.0f x %.0f mm", l.Material, usage.DiscCount, l.Sheet.Width, l.Sheet.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Disc area: %.0f mm2 | Sheet area: %.0f mm2 | Utilization: %.1f%% | Used: %.0f x %.0f mm",
		usage.DiscArea, usage.SheetArea, usage.Utilization, usage.UsedWidth, usage.UsedHeight)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	scale := math.Min(drawWidth/l.Sheet.Width, drawHeight/l.Sheet.Height)

	canvasW := l.Sheet.Width * scale
	canvasH := l.Sheet.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	pdf.SetFillColor(245, 240, 230)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	st := settings.Materials.For(l.Material)
	sr, sg, sb := rgb255(st.Stroke)
	hr, hg, hb := rgb255(st.HoleStroke)
	er, eg, eb := rgb255(st.Engraving)

	pdf.SetLineWidth(0.2)
	for _, p := range l.Placed {
		cx := offsetX + p.CX*scale
		cy := offsetY + p.CY*scale

		pdf.SetDrawColor(sr, sg, sb)
		pdf.Circle(cx, cy, p.Radius()*scale, "D")

		if model.HasCenterHole(p.Nominal, l.Material, settings) {
			pdf.SetDrawColor(hr, hg, hb)
			pdf.Circle(cx, cy, settings.HoleDiameter/2*scale, "D")
		}

		// Page labels are sized to the drawing, not to the engraving.
		if r := p.Radius() * scale; r > 4 {
			label := model.FormatSize(p.Nominal)
			pdf.SetFont("Helvetica", "", labelFontSize(r))
			pdf.SetTextColor(er, eg, eb)
			lw := pdf.GetStringWidth(label)
			pdf.SetXY(cx-lw/2, cy+r/2-2)
			pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)

	drawDimensionAnnotations(pdf, l.Sheet, offsetX, offsetY, canvasW, canvasH)
	drawSizeLegend(pdf, l, offsetY+canvasH+5)
}

// drawDimensionAnnotations adds width and height labels outside the sheet rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, sheet model.Sheet, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f mm", sheet.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f mm", sheet.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawSizeLegend lists pad sizes with their disc diameter and count below the drawing.
func drawSizeLegend(pdf *fpdf.Fpdf, l model.Layout, startY float64) {
	rows := sizeCounts(l)
	if len(rows) == 0 && len(l.Unplaced) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Discs placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	for _, r := range rows {
		label := fmt.Sprintf("%s -> %s mm x%d", model.FormatSize(r.nominal), model.FormatSize(r.diameter), r.count)
		labelW := pdf.GetStringWidth(label) + 4
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		pdf.SetXY(xPos, startY)
		pdf.CellFormat(labelW, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}

	if len(l.Unplaced) > 0 {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, startY+5)
		pdf.CellFormat(200, 4, fmt.Sprintf("WARNING: %d discs did not fit", len(l.Unplaced)), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

type sizeCount struct {
	nominal, diameter float64
	count             int
}

// sizeCounts groups placed discs by nominal size in first-seen order.
func sizeCounts(l model.Layout) []sizeCount {
	var rows []sizeCount
	index := make(map[float64]int)
	for _, p := range l.Placed {
		if i, ok := index[p.Nominal]; ok {
			rows[i].count++
			continue
		}
		index[p.Nominal] = len(rows)
		rows = append(rows, sizeCount{nominal: p.Nominal, diameter: p.Diameter, count: 1})
	}
	return rows
}

// renderSummaryPage draws the job overview: per-material table, laser
// estimates and a QR code carrying the job ID.
func renderSummaryPage(pdf *fpdf.Fpdf, job model.Job, settings model.Settings) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Pad Cutting Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	qrPNG, err := qrcode.Encode("padnest:job:"+job.ID, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	imgName := "qr_job_" + job.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, pageWidth-marginRight-summaryQR, marginTop+15, summaryQR, summaryQR, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Job", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Job ID", job.ID},
		{"Sheet", job.Sheet.String()},
		{"Pad sizes", fmt.Sprintf("%d", len(job.Pads))},
		{"Pads", fmt.Sprintf("%d", model.TotalQuantity(job.Pads))},
		{"Materials", fmt.Sprintf("%d", len(job.Layouts))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Material Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{35, 25, 25, 35, 40, 40, 40}
	headers := []string{"Material", "Discs", "Unplaced", "Utilization", "Cut length", "Cut time", "Layout"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	gen := gcode.New(settings)
	pdf.SetFont("Helvetica", "", 9)
	for i, l := range job.Layouts {
		usage := model.CalculateUsage(l)
		cut := gcode.Measure(gcode.ParseGCode(gen.GenerateLayout(l)))

		rowData := []string{
			l.Material.String(),
			fmt.Sprintf("%d", usage.DiscCount),
			fmt.Sprintf("%d", usage.UnplacedCount),
			fmt.Sprintf("%.1f%%", usage.Utilization),
			fmt.Sprintf("%.0f mm", cut.CutLength),
			fmt.Sprintf("%.1f min", cut.CutMinutes),
			l.ID,
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Felt offset", fmt.Sprintf("%.2f mm", settings.FeltOffset)},
		{"Card offset", fmt.Sprintf("%.2f mm", settings.FeltOffset+settings.CardToFeltOffset)},
		{"Felt thickness", fmt.Sprintf("%.3f mm", settings.FeltThicknessMM())},
		{"Spacing", fmt.Sprintf("%.1f mm", settings.Spacing)},
		{"Center hole", fmt.Sprintf("%.1f mm from %s mm pads", settings.HoleDiameter, model.FormatSize(settings.MinHoleSize))},
		{"Laser", fmt.Sprintf("%s, S%d, %.0f mm/min", gen.Profile().Name, settings.Laser.Power, settings.Laser.FeedRate)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(80, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PadNest", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// labelFontSize returns a font size for a disc drawn with radius r on the page.
func labelFontSize(r float64) float64 {
	switch {
	case r > 20:
		return 8
	case r > 10:
		return 7
	default:
		return 6
	}
}
