package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ComputeFunc scores a prediction tensor against a ground-truth tensor.
type ComputeFunc func(gt, pred *tensor.Dense) (float32, error)

// Metric pairs a reporting name with a compute function closed over its
// threshold (and, for the bbox variant, the grid size).
type Metric struct {
	Name    string
	Compute ComputeFunc
}

// thresholdFunc is a metric kernel before its threshold has been bound.
type thresholdFunc func(gt, pred *tensor.Dense, threshold float32) (float32, error)

// GetMetrics returns every metric/threshold combination for evaluation.
//
// The order is part of the contract: callers pair names with values
// positionally. Outer loop over metric kinds (iou, precision, recall,
// iou_acc, iou_bbox), inner loop over thresholds in the given order.
//
// Arguments:
//   - inputDim: Side length of the square heatmap grid (iou_bbox only).
//   - thresholds: Binarization thresholds to evaluate with.
//
// Returns:
//   - []Metric: One named metric per kind/threshold pair.
func GetMetrics(inputDim int, thresholds []float32) []Metric {
	kinds := []struct {
		name string
		fn   thresholdFunc
	}{
		{"iou", IoU},
		{"precision", Precision},
		{"recall", Recall},
		{"iou_acc", IoUAccuracy},
		{"iou_bbox", func(gt, pred *tensor.Dense, threshold float32) (float32, error) {
			return IoUBBox(gt, pred, threshold, inputDim)
		}},
	}

	ms := make([]Metric, 0, len(kinds)*len(thresholds))
	for _, kind := range kinds {
		for _, threshold := range thresholds {
			fn, t := kind.fn, threshold
			ms = append(ms, Metric{
				Name: kind.name + "_" + formatThreshold(t),
				Compute: func(gt, pred *tensor.Dense) (float32, error) {
					return fn(gt, pred, t)
				},
			})
		}
	}
	return ms
}

// formatThreshold renders a threshold the way it appears in metric names,
// with the shortest decimal form ("0.5", "0.25").
func formatThreshold(t float32) string {
	return strconv.FormatFloat(float64(t), 'g', -1, 32)
}

// FormatResults renders metric names and values as a single report line,
// e.g. "iou_0.5: 0.733, precision_0.5: 0.812".
//
// Arguments:
//   - names: Metric names, typically from GetMetrics.
//   - values: Metric values, positionally paired with names.
//
// Returns:
//   - string: The formatted report line, values to 3 decimal places.
//   - error: Length mismatch between names and values.
func FormatResults(names []string, values []float32) (string, error) {
	if len(names) != len(values) {
		return "", errors.Errorf("got %d names for %d values", len(names), len(values))
	}
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %.3f", name, values[i])
	}
	return strings.Join(parts, ", "), nil
}
