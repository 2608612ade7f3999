// Package metrics - Evaluation metrics for heatmap-based object localization.
//
// Every metric takes a ground-truth tensor and a prediction tensor of shape
// (batch, N), binarizes the predictions against a threshold, reduces each
// instance to a scalar score, and returns the mean score over the batch.
package metrics

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Epsilon is added to every ratio denominator so an instance with an empty
// union (or no positives at all) scores 0 instead of dividing by zero.
const Epsilon float32 = 1e-7

// IoUCutoff is the fixed IoU above which a localization counts as correct
// in IoUAccuracy. Strictly greater-than; exactly 0.5 does not count.
const IoUCutoff float32 = 0.5

// batchPair is a validated flat view over a (batch, N) tensor pair.
type batchPair struct {
	gt   []float32
	pred []float32
	rows int
	n    int
}

// newBatchPair validates shapes and dtypes and exposes the backing slices.
//
// Arguments:
//   - gt: Ground-truth tensor, shape (batch, N), values in {0, 1}.
//   - pred: Prediction tensor, shape (batch, N), continuous heatmap scores.
//
// Returns:
//   - *batchPair: Flat float32 views plus the batch dimensions.
//   - error: Shape or dtype mismatch.
func newBatchPair(gt, pred *tensor.Dense) (*batchPair, error) {
	if gt == nil || pred == nil {
		return nil, errors.New("ground truth and prediction tensors must be non-nil")
	}
	if gt.Dtype() != tensor.Float32 {
		return nil, errors.Errorf("ground truth must be float32, got %v", gt.Dtype())
	}
	if pred.Dtype() != tensor.Float32 {
		return nil, errors.Errorf("prediction must be float32, got %v", pred.Dtype())
	}
	gs, ps := gt.Shape(), pred.Shape()
	if len(gs) != 2 {
		return nil, errors.Errorf("ground truth must have shape (batch, n), got %v", gs)
	}
	if !gs.Eq(ps) {
		return nil, errors.Errorf("ground truth shape %v does not match prediction shape %v", gs, ps)
	}
	g, err := floatValues(gt)
	if err != nil {
		return nil, errors.Wrap(err, "ground truth")
	}
	p, err := floatValues(pred)
	if err != nil {
		return nil, errors.Wrap(err, "prediction")
	}
	return &batchPair{gt: g, pred: p, rows: gs[0], n: gs[1]}, nil
}

// floatValues returns the flat backing values of a dense float32 tensor.
func floatValues(t *tensor.Dense) ([]float32, error) {
	switch v := t.Data().(type) {
	case []float32:
		return v, nil
	case float32:
		return []float32{v}, nil
	default:
		return nil, errors.Errorf("unsupported backing data %T", v)
	}
}

// iouValues computes the per-instance thresholded IoU scores.
func (b *batchPair) iouValues(threshold float32) []float32 {
	vals := make([]float32, b.rows)
	for i := 0; i < b.rows; i++ {
		off := i * b.n
		var inter, union float32
		for j := 0; j < b.n; j++ {
			g := b.gt[off+j]
			var p float32
			if b.pred[off+j] > threshold {
				p = 1
			}
			inter += g * p
			if g+p > 0 {
				union++
			}
		}
		vals[i] = inter / (Epsilon + union)
	}
	return vals
}

// IoU measures the mean intersection-over-union of the thresholded
// predictions against the ground truth.
//
// Arguments:
//   - gt: Ground-truth tensor, shape (batch, N).
//   - pred: Prediction heatmap tensor, shape (batch, N).
//   - threshold: Scores strictly above this count as positive cells.
//
// Returns:
//   - float32: Mean per-instance IoU over the batch.
//   - error: Shape or dtype mismatch.
func IoU(gt, pred *tensor.Dense, threshold float32) (float32, error) {
	b, err := newBatchPair(gt, pred)
	if err != nil {
		return 0, err
	}
	return mean(b.iouValues(threshold)), nil
}

// Precision measures the mean per-instance precision of the thresholded
// predictions: tp / (tp + fp + Epsilon).
func Precision(gt, pred *tensor.Dense, threshold float32) (float32, error) {
	b, err := newBatchPair(gt, pred)
	if err != nil {
		return 0, err
	}
	vals := make([]float32, b.rows)
	for i := 0; i < b.rows; i++ {
		off := i * b.n
		var tp, fp float32
		for j := 0; j < b.n; j++ {
			g := b.gt[off+j]
			var p float32
			if b.pred[off+j] > threshold {
				p = 1
			}
			tp += g * p
			if p-g > 0 {
				fp++
			}
		}
		vals[i] = tp / (tp + fp + Epsilon)
	}
	return mean(vals), nil
}

// Recall measures the mean per-instance recall of the thresholded
// predictions: tp / (tp + fn + Epsilon).
func Recall(gt, pred *tensor.Dense, threshold float32) (float32, error) {
	b, err := newBatchPair(gt, pred)
	if err != nil {
		return 0, err
	}
	vals := make([]float32, b.rows)
	for i := 0; i < b.rows; i++ {
		off := i * b.n
		var tp, fn float32
		for j := 0; j < b.n; j++ {
			g := b.gt[off+j]
			var p float32
			if b.pred[off+j] > threshold {
				p = 1
			}
			tp += g * p
			if g-p > 0 {
				fn++
			}
		}
		vals[i] = tp / (tp + fn + Epsilon)
	}
	return mean(vals), nil
}

// IoUAccuracy measures the fraction of instances whose thresholded IoU
// with the ground truth exceeds IoUCutoff.
func IoUAccuracy(gt, pred *tensor.Dense, threshold float32) (float32, error) {
	b, err := newBatchPair(gt, pred)
	if err != nil {
		return 0, err
	}
	vals := b.iouValues(threshold)
	var correct float32
	for _, v := range vals {
		if v > IoUCutoff {
			correct++
		}
	}
	return correct / float32(len(vals)), nil
}

// IoUBBox measures the mean IoU of the bounding mask reconstructed from the
// thresholded predictions against the ground truth.
//
// Each instance is viewed as an inputDim x inputDim grid. A row is active if
// any of its cells is positive, a column likewise; the reconstructed mask is
// the outer product of the two activity vectors. Note this is not a filled
// min/max rectangle: for disconnected blobs only cells on an active row AND
// an active column are set.
//
// Arguments:
//   - gt: Ground-truth tensor, shape (batch, inputDim*inputDim).
//   - pred: Prediction heatmap tensor, same shape.
//   - threshold: Scores strictly above this count as positive cells.
//   - inputDim: Side length of the square spatial grid.
//
// Returns:
//   - float32: Mean per-instance IoU of the mask over the batch.
//   - error: Shape, dtype, or grid-size mismatch.
func IoUBBox(gt, pred *tensor.Dense, threshold float32, inputDim int) (float32, error) {
	b, err := newBatchPair(gt, pred)
	if err != nil {
		return 0, err
	}
	if inputDim <= 0 || inputDim*inputDim != b.n {
		return 0, errors.Errorf("cannot view %d cells as a %dx%d grid", b.n, inputDim, inputDim)
	}

	vals := make([]float32, b.rows)
	rowActive := make([]bool, inputDim)
	colActive := make([]bool, inputDim)
	for i := 0; i < b.rows; i++ {
		off := i * b.n
		for k := 0; k < inputDim; k++ {
			rowActive[k] = false
			colActive[k] = false
		}
		for r := 0; r < inputDim; r++ {
			for c := 0; c < inputDim; c++ {
				if b.pred[off+r*inputDim+c] > threshold {
					rowActive[r] = true
					colActive[c] = true
				}
			}
		}

		var inter, union float32
		for r := 0; r < inputDim; r++ {
			for c := 0; c < inputDim; c++ {
				g := b.gt[off+r*inputDim+c]
				var m float32
				if rowActive[r] && colActive[c] {
					m = 1
				}
				inter += g * m
				if g+m > 0 {
					union++
				}
			}
		}
		vals[i] = inter / (Epsilon + union)
	}
	return mean(vals), nil
}

func mean(vals []float32) float32 {
	var sum float32
	for _, v := range vals {
		sum += v
	}
	return sum / float32(len(vals))
}
