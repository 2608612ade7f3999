package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMetricsOrderAndNames(t *testing.T) {
	ms := GetMetrics(3, []float32{0.5})
	require.Len(t, ms, 5)

	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	assert.Equal(t, []string{
		"iou_0.5",
		"precision_0.5",
		"recall_0.5",
		"iou_acc_0.5",
		"iou_bbox_0.5",
	}, names)
}

func TestGetMetricsThresholdOrdering(t *testing.T) {
	// Outer loop over kinds, inner loop over thresholds in the given order.
	// Downstream reporting pairs names with values positionally.
	ms := GetMetrics(3, []float32{0.25, 0.5})
	require.Len(t, ms, 10)

	assert.Equal(t, "iou_0.25", ms[0].Name)
	assert.Equal(t, "iou_0.5", ms[1].Name)
	assert.Equal(t, "precision_0.25", ms[2].Name)
	assert.Equal(t, "precision_0.5", ms[3].Name)
	assert.Equal(t, "iou_bbox_0.25", ms[8].Name)
	assert.Equal(t, "iou_bbox_0.5", ms[9].Name)
}

func TestGetMetricsClosures(t *testing.T) {
	// Each entry must be closed over its own threshold (and the bbox
	// variant over the grid size), not the loop variable.
	gt := heatmapTensor(t, 1, 9, fixtureGT)
	pred := heatmapTensor(t, 1, 9, fixturePred)

	ms := GetMetrics(3, []float32{0.6})
	require.Len(t, ms, 5)

	want := map[string]float64{
		"iou_0.6":       0.375,
		"precision_0.6": 0.75,
		"recall_0.6":    3.0 / 7.0,
		"iou_acc_0.6":   0.0,
		"iou_bbox_0.6":  7.0 / 9.0,
	}
	for _, m := range ms {
		got, err := m.Compute(gt, pred)
		require.NoError(t, err, m.Name)
		assert.InDelta(t, want[m.Name], got, 1e-4, m.Name)
	}
}

func TestFormatResults(t *testing.T) {
	got, err := FormatResults([]string{"a", "b"}, []float32{1.0, 2.5})
	require.NoError(t, err)
	assert.Equal(t, "a: 1.000, b: 2.500", got)
}

func TestFormatResultsEmpty(t *testing.T) {
	got, err := FormatResults(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestFormatResultsLengthMismatch(t *testing.T) {
	_, err := FormatResults([]string{"a", "b"}, []float32{1.0})
	assert.Error(t, err, "mismatched lengths must not be silently truncated")
}

func TestFormatThreshold(t *testing.T) {
	assert.Equal(t, "0.5", formatThreshold(0.5))
	assert.Equal(t, "0.25", formatThreshold(0.25))
	assert.Equal(t, "0.75", formatThreshold(0.75))
	assert.Equal(t, "1", formatThreshold(1))
}
