// Package heatmap - Construction helpers for batched heatmap tensors.
//
// Ground truth and predictions move through the toolkit as dense float32
// tensors of shape (batch, N), where N is the flattened spatial size of the
// model's output grid.
package heatmap

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// FromRows packs per-instance heatmap rows into a (batch, N) tensor.
//
// Arguments:
//   - rows: One flattened heatmap per instance; all rows must have the
//     same length.
//
// Returns:
//   - *tensor.Dense: Float32 tensor of shape (len(rows), len(rows[0])).
//   - error: Empty input or ragged rows.
func FromRows(rows [][]float32) (*tensor.Dense, error) {
	if len(rows) == 0 {
		return nil, errors.New("no heatmap rows")
	}
	n := len(rows[0])
	if n == 0 {
		return nil, errors.New("heatmap rows are empty")
	}
	backing := make([]float32, 0, len(rows)*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.Errorf("row %d has %d cells, want %d", i, len(row), n)
		}
		backing = append(backing, row...)
	}
	return tensor.New(tensor.WithShape(len(rows), n), tensor.WithBacking(backing)), nil
}

// Flatten converts a 2D spatial grid to a row-major flat row.
func Flatten(grid [][]float32) []float32 {
	var row []float32
	for _, r := range grid {
		row = append(row, r...)
	}
	return row
}

// Stats summarizes a heatmap tensor for logging.
//
// Returns:
//   - min, max, mean: Over every cell of the tensor.
//   - error: Nil, empty, or non-float32 tensor.
func Stats(t *tensor.Dense) (min, max, mean float32, err error) {
	if t == nil {
		return 0, 0, 0, errors.New("nil tensor")
	}
	var values []float32
	switch v := t.Data().(type) {
	case []float32:
		values = v
	case float32:
		values = []float32{v}
	default:
		return 0, 0, 0, errors.Errorf("unsupported backing data %T", v)
	}
	if len(values) == 0 {
		return 0, 0, 0, errors.New("empty tensor")
	}

	min = math32.Inf(1)
	max = math32.Inf(-1)
	var sum float32
	for _, v := range values {
		min = math32.Min(min, v)
		max = math32.Max(max, v)
		sum += v
	}
	return min, max, sum / float32(len(values)), nil
}
