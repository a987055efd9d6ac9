package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/PadNest/internal/model"
)

// diameterScale rounds circle diameters to 0.1 mm before grouping.
const diameterScale = 10

// ImportDXF reads pad sizes from the CIRCLE entities of a DXF drawing.
// Each circle's diameter is a nominal pad size; circles of the same size
// are counted into one PadSpec, in the order sizes first appear. Circles
// smaller than minDiameter (center holes, registration marks) are skipped.
func ImportDXF(path string, minDiameter float64) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	index := make(map[float64]int)
	skipped, ignored := 0, 0
	for _, ent := range entities {
		c, ok := ent.(*entity.Circle)
		if !ok {
			ignored++
			continue
		}
		d := math.Round(2*c.Radius*diameterScale) / diameterScale
		if d <= 0 || d < minDiameter {
			skipped++
			continue
		}
		if i, seen := index[d]; seen {
			result.Pads[i].Quantity++
			continue
		}
		index[d] = len(result.Pads)
		result.Pads = append(result.Pads, model.PadSpec{Size: d, Quantity: 1})
	}

	if skipped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d circle(s) smaller than %g mm", skipped, minDiameter))
	}
	if ignored > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Ignored %d non-circle entit(ies)", ignored))
	}
	if len(result.Pads) == 0 {
		result.Errors = append(result.Errors, "No circles found in DXF file")
	}

	return result
}
