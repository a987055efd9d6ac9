package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"

	"github.com/piwi3910/PadNest/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Size,Qty\n20,2\n12.5,1\n", ','},
		{"semicolon", "Size;Qty\n20;2\n12.5;1\n", ';'},
		{"tab", "Size\tQty\n20\t2\n12.5\t1\n", '\t'},
		{"pipe", "Size|Qty\n20|2\n12.5|1\n", '|'},
		{"single column", "20x2\n12.5x1\n", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, ok := DetectColumns([]string{"Size", "Quantity"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if mapping.Size != 0 || mapping.Quantity != 1 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	mapping, ok := DetectColumns([]string{"Note", " PCS ", "Diameter"})
	if !ok {
		t.Fatal("expected header to be detected")
	}
	if mapping.Size != 2 {
		t.Errorf("expected size column 2, got %d", mapping.Size)
	}
	if mapping.Quantity != 1 {
		t.Errorf("expected quantity column 1, got %d", mapping.Quantity)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, ok := DetectColumns([]string{"20", "3"})
	if ok {
		t.Error("numeric row should not be a header")
	}
	if mapping.Size != 0 || mapping.Quantity != 1 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Qty,Size\n2,20\n1,12.5\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := []model.PadSpec{{Size: 20, Quantity: 2}, {Size: 12.5, Quantity: 1}}
	if len(result.Pads) != len(want) {
		t.Fatalf("expected %d pads, got %d", len(want), len(result.Pads))
	}
	for i, p := range want {
		if result.Pads[i] != p {
			t.Errorf("pad %d = %+v, want %+v", i, result.Pads[i], p)
		}
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("20,2\n30,1\n"), ',')
	if len(result.Pads) != 2 {
		t.Fatalf("expected 2 pads, got %d (errors: %v)", len(result.Pads), result.Errors)
	}
	if result.Pads[1].Size != 30 {
		t.Errorf("expected size 30, got %v", result.Pads[1].Size)
	}
}

func TestImportCSVFromReader_PadLineCells(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("20x3\n12.5×2\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pads) != 2 {
		t.Fatalf("expected 2 pads, got %d", len(result.Pads))
	}
	if result.Pads[0].Quantity != 3 || result.Pads[1].Size != 12.5 {
		t.Errorf("unexpected pads %+v", result.Pads)
	}
}

func TestImportCSVFromReader_NoQuantityColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Size\n20\n20mm\n"), ',')
	if len(result.Pads) != 2 {
		t.Fatalf("expected 2 pads, got %d (errors: %v)", len(result.Pads), result.Errors)
	}
	for _, p := range result.Pads {
		if p.Quantity != 1 || p.Size != 20 {
			t.Errorf("unexpected pad %+v", p)
		}
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "one pad per row") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning about the missing quantity column, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_InvalidRows(t *testing.T) {
	data := "Size,Qty\nabc,1\n20,two\n-5,1\n20,0\n30,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if len(result.Pads) != 1 || result.Pads[0].Size != 30 {
		t.Errorf("expected the one valid row, got %+v", result.Pads)
	}
	if result.Err() == nil {
		t.Error("Err() should report the row errors")
	}
}

func TestImportCSVFromReader_MissingSizeColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Qty,Label\n2,x\n"), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for missing size column")
	}
	if len(result.Pads) != 0 {
		t.Errorf("expected no pads, got %d", len(result.Pads))
	}
}

func TestImportCSVFromReader_EmptyRows(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Size,Qty\n20,1\n,\n\n12,2\n"), ',')
	if len(result.Pads) != 2 {
		t.Errorf("expected 2 pads, got %d (errors: %v)", len(result.Pads), result.Errors)
	}
	if len(result.Errors) > 0 {
		t.Errorf("empty rows should not be errors: %v", result.Errors)
	}
}

func TestImportCSVFromReader_Empty(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pads.csv")
	if err := os.WriteFile(path, []byte("Size;Qty\n20;2\n40;1\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pads) != 2 {
		t.Fatalf("expected 2 pads, got %d", len(result.Pads))
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileErrors(t *testing.T) {
	if r := ImportCSV("/nonexistent/pads.csv"); len(r.Errors) == 0 {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if r := ImportCSV(path); len(r.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pads.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Pad Size", "Pieces"},
		{20, 4},
		{12.5, 2},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pads) != 2 {
		t.Fatalf("expected 2 pads, got %d", len(result.Pads))
	}
	if result.Pads[0] != (model.PadSpec{Size: 20, Quantity: 4}) {
		t.Errorf("unexpected first pad %+v", result.Pads[0])
	}
	if result.Pads[1].Size != 12.5 {
		t.Errorf("expected size 12.5, got %v", result.Pads[1].Size)
	}
}

func TestImportExcel_InvalidData(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Size", "Qty"},
		{"big", 1},
		{20, 1},
	})

	result := ImportExcel(path)
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Row 2") {
		t.Errorf("errors should name the spreadsheet row, got %q", result.Errors[0])
	}
	if len(result.Pads) != 1 {
		t.Errorf("expected 1 pad, got %d", len(result.Pads))
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	if r := ImportExcel("/nonexistent/pads.xlsx"); len(r.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── DXF Import Tests ──────────────────────────────────────

func createTestDXF(t *testing.T, circles [][3]float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pads.dxf")

	d := dxf.NewDrawing()
	for _, c := range circles {
		if _, err := d.Circle(c[0], c[1], 0, c[2]); err != nil {
			t.Fatalf("failed to add circle: %v", err)
		}
	}
	if _, err := d.Line(0, 0, 0, 10, 10, 0); err != nil {
		t.Fatalf("failed to add line: %v", err)
	}
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF file: %v", err)
	}
	return path
}

func TestImportDXF_GroupsCircles(t *testing.T) {
	path := createTestDXF(t, [][3]float64{
		{20, 20, 10},
		{60, 20, 6.25},
		{100, 20, 10},
		{20, 20, 1.5}, // center hole
	})

	result := ImportDXF(path, 5)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := []model.PadSpec{{Size: 20, Quantity: 2}, {Size: 12.5, Quantity: 1}}
	if len(result.Pads) != len(want) {
		t.Fatalf("expected %d sizes, got %+v", len(want), result.Pads)
	}
	for i, p := range want {
		if result.Pads[i] != p {
			t.Errorf("pad %d = %+v, want %+v", i, result.Pads[i], p)
		}
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected skipped-circle and ignored-entity warnings, got %v", result.Warnings)
	}
}

func TestImportDXF_Errors(t *testing.T) {
	if r := ImportDXF("/nonexistent/pads.dxf", 0); len(r.Errors) == 0 {
		t.Error("expected error for missing file")
	}

	path := createTestDXF(t, [][3]float64{{10, 10, 1}})
	if r := ImportDXF(path, 5); len(r.Errors) == 0 {
		t.Error("expected error when every circle is below the minimum")
	}
}

// ─── ImportFile Tests ──────────────────────────────────────

func TestImportFile_Dispatch(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "pads.txt")
	if err := os.WriteFile(txt, []byte("20x2\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	csvPath := filepath.Join(dir, "pads.CSV")
	if err := os.WriteFile(csvPath, []byte("Size,Qty\n30,1\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if r := ImportFile(txt, 0); len(r.Pads) != 1 || r.Pads[0].Size != 20 {
		t.Errorf("text import = %+v", r)
	}
	if r := ImportFile(csvPath, 0); len(r.Pads) != 1 || r.Pads[0].Size != 30 {
		t.Errorf("csv import = %+v", r)
	}
}
