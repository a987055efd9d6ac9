package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/model"
)

func TestCheckFeasibility_SimpleFit(t *testing.T) {
	ok, err := CheckFeasibility([]model.PadSpec{{Size: 20, Quantity: 2}}, model.Felt, 50, 50, model.DefaultSettings())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckFeasibility_Infeasible(t *testing.T) {
	pads := []model.PadSpec{{Size: 40, Quantity: 5}}
	s := model.DefaultSettings()

	ok, err := CheckFeasibility(pads, model.ExactSize, 30, 30, s)
	require.NoError(t, err)
	assert.False(t, ok)

	layout, err := GenerateLayout(pads, model.ExactSize, 30, 30, s)
	require.NoError(t, err)
	assert.Empty(t, layout.Placed)
	assert.Len(t, layout.Unplaced, 5)
}

func TestCheckFeasibility_AgreesWithGenerateLayout(t *testing.T) {
	s := model.DefaultSettings()
	pads := []model.PadSpec{{Size: 30, Quantity: 6}, {Size: 16.5, Quantity: 8}}
	for _, m := range model.Materials {
		for _, w := range []float64{80, 120, 200} {
			ok, err := CheckFeasibility(pads, m, w, 100, s)
			require.NoError(t, err)
			layout, err := GenerateLayout(pads, m, w, 100, s)
			require.NoError(t, err)
			assert.Equal(t, layout.Complete(), ok, "%v on %vx100", m, w)
			assert.Equal(t, 14, len(layout.Placed)+len(layout.Unplaced))
		}
	}
}

func TestGenerateLayout_EmptyPadList(t *testing.T) {
	layout, err := GenerateLayout(nil, model.Card, 100, 100, model.DefaultSettings())
	require.NoError(t, err)
	assert.Empty(t, layout.Placed)
	assert.True(t, layout.Complete())
	assert.Equal(t, model.Card, layout.Material)
	assert.Equal(t, 1.0, layout.Spacing)
	assert.NotEmpty(t, layout.ID)
}

func TestGenerateLayout_InvalidConfigurationFailsFast(t *testing.T) {
	s := model.DefaultSettings()
	s.Spacing = -1
	_, err := GenerateLayout([]model.PadSpec{{Size: 20, Quantity: 1}}, model.Felt, 100, 100, s)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidConfiguration))

	_, err = CheckFeasibility([]model.PadSpec{{Size: 20, Quantity: 1}}, model.Felt, 100, 100, s)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidConfiguration))
}

func TestGenerateLayout_InvalidInputs(t *testing.T) {
	s := model.DefaultSettings()

	_, err := GenerateLayout(nil, model.MaterialUnknown, 100, 100, s)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidMaterial))

	_, err = GenerateLayout(nil, model.Felt, 0, 100, s)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))

	_, err = GenerateLayout([]model.PadSpec{{Size: 20, Quantity: -1}}, model.Felt, 100, 100, s)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}

func TestCheckFeasibility_BadQuantityIsAnError(t *testing.T) {
	s := model.DefaultSettings()

	for _, pads := range [][]model.PadSpec{
		{{Size: 20, Quantity: -1}},
		{{Size: 20, Quantity: 3}, {Size: 12, Quantity: -10}},
		{{Size: 1, Quantity: 1000000000}},
	} {
		var err error
		require.NotPanics(t, func() {
			_, err = CheckFeasibility(pads, model.Felt, 100, 100, s)
		})
		assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput), "pads %v: %v", pads, err)
	}
}

func TestPlan_AllMaterialsFit(t *testing.T) {
	pads := []model.PadSpec{{Size: 20, Quantity: 2}, {Size: 12, Quantity: 3}}
	materials := []model.Material{model.Felt, model.Card, model.Leather}

	job, err := Plan(pads, materials, model.Sheet{Width: 150, Height: 100}, model.DefaultSettings())

	require.NoError(t, err)
	require.Len(t, job.Layouts, 3)
	for i, l := range job.Layouts {
		assert.Equal(t, materials[i], l.Material)
		assert.Len(t, l.Placed, 5)
		assert.True(t, l.Complete())
	}
	assert.NotEmpty(t, job.ID)
}

func TestPlan_AllOrNothing(t *testing.T) {
	// Felt 30 -> 29.25 fits four on 70x70; leather 30 -> 42 does not.
	pads := []model.PadSpec{{Size: 30, Quantity: 4}}

	job, err := Plan(pads, []model.Material{model.Felt, model.Leather}, model.Sheet{Width: 70, Height: 70}, model.DefaultSettings())

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrCodeUnfittableLayout))
	var ue *apperr.UnfittableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "leather", ue.Material)
	assert.Equal(t, 4, ue.Total)
	assert.Less(t, ue.Placed, 4)
	assert.Empty(t, job.Layouts, "no layout may escape a failed plan")
}

func TestPlan_NoMaterials(t *testing.T) {
	_, err := Plan(nil, nil, model.Sheet{Width: 10, Height: 10}, model.DefaultSettings())
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}

func TestCompareSheets_OrdersFittingSmallestFirst(t *testing.T) {
	pads := []model.PadSpec{{Size: 20, Quantity: 4}}
	candidates := []model.Sheet{
		{Width: 300, Height: 300},
		{Width: 30, Height: 30},
		{Width: 50, Height: 50},
		{Width: 20, Height: 20},
	}

	results, err := CompareSheets(pads, model.ExactSize, candidates, model.DefaultSettings())

	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.True(t, results[0].Fits)
	assert.Equal(t, model.Sheet{Width: 50, Height: 50}, results[0].Sheet)
	assert.Equal(t, model.Sheet{Width: 300, Height: 300}, results[1].Sheet)
	assert.False(t, results[2].Fits)
	assert.Equal(t, model.Sheet{Width: 30, Height: 30}, results[2].Sheet, "30x30 holds one disc, 20x20 none")
	assert.Equal(t, 1, results[2].Placed)
	assert.Equal(t, 0, results[3].Placed)
	assert.Equal(t, 4, results[3].Total)
}
