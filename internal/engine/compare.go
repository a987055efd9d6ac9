package engine

import (
	"sort"

	"github.com/piwi3910/PadNest/internal/model"
)

// SheetFit holds the nesting outcome of one candidate sheet.
type SheetFit struct {
	Sheet       model.Sheet `json:"sheet"`
	Fits        bool        `json:"fits"`
	Placed      int         `json:"placed"`
	Total       int         `json:"total"`
	Utilization float64     `json:"utilization"`
}

// CompareSheets nests the pad list in material m on each candidate sheet.
// Sheets that hold every disc come first, smallest area first; the rest
// follow ordered by how many discs they hold. Candidates of equal rank keep
// their input order.
func CompareSheets(pads []model.PadSpec, m model.Material, candidates []model.Sheet, s model.Settings) ([]SheetFit, error) {
	results := make([]SheetFit, 0, len(candidates))

	for _, sheet := range candidates {
		layout, err := GenerateLayout(pads, m, sheet.Width, sheet.Height, s)
		if err != nil {
			return nil, err
		}
		usage := model.CalculateUsage(layout)
		results = append(results, SheetFit{
			Sheet:       sheet,
			Fits:        layout.Complete(),
			Placed:      usage.DiscCount,
			Total:       usage.DiscCount + usage.UnplacedCount,
			Utilization: usage.Utilization,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Fits != b.Fits {
			return a.Fits
		}
		if a.Fits {
			return a.Sheet.Area() < b.Sheet.Area()
		}
		return a.Placed > b.Placed
	})
	return results, nil
}
