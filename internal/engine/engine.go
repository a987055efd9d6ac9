// Package engine nests pad discs onto sheets. It exposes the feasibility
// check and layout generation used by every output path, plus the
// all-or-nothing multi-material plan.
package engine

import (
	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/model"
)

// CheckFeasibility reports whether every disc of the pad list fits on a
// width x height sheet in material m.
func CheckFeasibility(pads []model.PadSpec, m model.Material, width, height float64, s model.Settings) (bool, error) {
	discs, sheet, err := prepare(pads, m, width, height, s)
	if err != nil {
		return false, err
	}
	return NewNester(s).Fits(discs, sheet), nil
}

// GenerateLayout nests the pad list in material m and returns the layout,
// including any discs that did not fit.
func GenerateLayout(pads []model.PadSpec, m model.Material, width, height float64, s model.Settings) (model.Layout, error) {
	discs, sheet, err := prepare(pads, m, width, height, s)
	if err != nil {
		return model.Layout{}, err
	}
	layout := model.NewLayout(m, sheet, s.Spacing)
	placed, unplaced := NewNester(s).Nest(discs, sheet)
	layout.Placed = placed
	layout.Unplaced = unplaced
	return layout, nil
}

// prepare validates inputs and expands the pad list for material m.
func prepare(pads []model.PadSpec, m model.Material, width, height float64, s model.Settings) ([]model.Disc, model.Sheet, error) {
	if err := s.Validate(); err != nil {
		return nil, model.Sheet{}, err
	}
	if !m.Valid() {
		return nil, model.Sheet{}, apperr.New(apperr.ErrCodeInvalidMaterial, "material %q does not produce discs", m)
	}
	sheet := model.Sheet{Width: width, Height: height}
	if err := sheet.Validate(); err != nil {
		return nil, model.Sheet{}, err
	}
	discs, err := model.ExpandDiscs(pads, m, s)
	if err != nil {
		return nil, model.Sheet{}, err
	}
	return discs, sheet, nil
}

// Plan lays out every selected material on its own clean sheet. All
// materials are checked for feasibility first; if any one does not fit, Plan
// returns an *errors.UnfittableError naming it and no layouts at all.
func Plan(pads []model.PadSpec, materials []model.Material, sheet model.Sheet, s model.Settings) (model.Job, error) {
	if len(materials) == 0 {
		return model.Job{}, apperr.New(apperr.ErrCodeInvalidInput, "no materials selected")
	}

	for _, m := range materials {
		ok, err := CheckFeasibility(pads, m, sheet.Width, sheet.Height, s)
		if err != nil {
			return model.Job{}, err
		}
		if !ok {
			return model.Job{}, unfittable(pads, m, sheet, s)
		}
	}

	job := model.NewJob(pads, sheet)
	for _, m := range materials {
		layout, err := GenerateLayout(pads, m, sheet.Width, sheet.Height, s)
		if err != nil {
			return model.Job{}, err
		}
		job.Layouts = append(job.Layouts, layout)
	}
	return job, nil
}

func unfittable(pads []model.PadSpec, m model.Material, sheet model.Sheet, s model.Settings) error {
	layout, err := GenerateLayout(pads, m, sheet.Width, sheet.Height, s)
	if err != nil {
		return err
	}
	return &apperr.UnfittableError{
		Material: m.String(),
		Placed:   len(layout.Placed),
		Total:    len(layout.Placed) + len(layout.Unplaced),
	}
}
