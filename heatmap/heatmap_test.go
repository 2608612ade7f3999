package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestFromRows(t *testing.T) {
	got, err := FromRows([][]float32{
		{0, 1, 0.5},
		{1, 0, 0.25},
	})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, got.Shape())
	assert.Equal(t, []float32{0, 1, 0.5, 1, 0, 0.25}, got.Data().([]float32))
}

func TestFromRowsRejectsRagged(t *testing.T) {
	_, err := FromRows([][]float32{
		{0, 1, 0.5},
		{1, 0},
	})
	assert.Error(t, err)
}

func TestFromRowsRejectsEmpty(t *testing.T) {
	_, err := FromRows(nil)
	assert.Error(t, err)

	_, err = FromRows([][]float32{{}})
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	got := Flatten([][]float32{
		{0, 1, 1},
		{1, 1, 1},
		{1, 0, 1},
	})
	assert.Equal(t, []float32{0, 1, 1, 1, 1, 1, 1, 0, 1}, got)
}

func TestStats(t *testing.T) {
	d := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float32{0, 0.5, 1, 0.5}))

	min, max, mean, err := Stats(d)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, min, 1e-6)
	assert.InDelta(t, 1.0, max, 1e-6)
	assert.InDelta(t, 0.5, mean, 1e-6)
}

func TestStatsNil(t *testing.T) {
	_, _, _, err := Stats(nil)
	assert.Error(t, err)
}
