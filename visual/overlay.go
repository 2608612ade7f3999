// Package visual - Rendering prediction heatmaps over source frames.
package visual

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-eval/common"
)

// Options controls overlay rendering.
type Options struct {
	// InputDim is the side length of the square heatmap grid.
	InputDim int
	// Alpha is the blend weight of the colorized heatmap over the frame.
	Alpha float64
	// GTColor and PredColor are the box outline colors.
	GTColor   color.RGBA
	PredColor color.RGBA
}

// DefaultOptions returns the standard overlay settings: green ground-truth
// box, red predicted box, 40% heatmap blend.
func DefaultOptions(inputDim int) Options {
	return Options{
		InputDim:  inputDim,
		Alpha:     0.4,
		GTColor:   color.RGBA{G: 255, A: 255},
		PredColor: color.RGBA{R: 255, A: 255},
	}
}

// RenderOverlay blends the prediction heatmap over a frame and draws the
// bounding boxes reconstructed from the ground-truth and thresholded
// prediction masks, writing the result to outPath.
//
// Arguments:
//   - framePath: Source frame on disk.
//   - outPath: Destination image path.
//   - gt: Ground-truth mask row, length InputDim*InputDim.
//   - pred: Prediction heatmap row, same length.
//   - threshold: Binarization threshold for the predicted box.
//   - opts: Rendering options.
//
// Returns:
//   - error: Unreadable frame, shape mismatch, or write failure.
func RenderOverlay(framePath, outPath string, gt, pred []float32, threshold float32, opts Options) error {
	d := opts.InputDim
	if d <= 0 || len(pred) != d*d {
		return errors.Errorf("prediction has %d cells, want %dx%d grid", len(pred), d, d)
	}
	if len(gt) != len(pred) {
		return errors.Errorf("ground truth has %d cells, prediction has %d", len(gt), len(pred))
	}

	frame := gocv.IMRead(framePath, gocv.IMReadColor)
	if frame.Empty() {
		return errors.Errorf("failed to read frame %s", framePath)
	}
	defer frame.Close()

	gray := gocv.NewMatWithSize(d, d, gocv.MatTypeCV8UC1)
	defer gray.Close()
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			v := math32.Min(math32.Max(pred[r*d+c], 0), 1)
			gray.SetUCharAt(r, c, uint8(math32.Round(v*255)))
		}
	}

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(gray, &colored, gocv.ColormapJet)

	size := frame.Size() // [rows, cols]
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(colored, &resized, image.Pt(size[1], size[0]), 0, 0, gocv.InterpolationNearestNeighbor)

	blended := gocv.NewMat()
	defer blended.Close()
	gocv.AddWeighted(frame, 1-opts.Alpha, resized, opts.Alpha, 0, &blended)

	width, height := float32(size[1]), float32(size[0])
	sx, sy := width/float32(d), height/float32(d)
	if box, ok := common.BoxFromMask(binarize(gt, 0.5), d); ok {
		gocv.Rectangle(&blended, box.Scale(sx, sy).Clamp(width, height).ToRect(), opts.GTColor, 2)
	}
	if box, ok := common.BoxFromMask(binarize(pred, threshold), d); ok {
		gocv.Rectangle(&blended, box.Scale(sx, sy).Clamp(width, height).ToRect(), opts.PredColor, 2)
	}

	if ok := gocv.IMWrite(outPath, blended); !ok {
		return errors.Errorf("failed to write overlay %s", outPath)
	}
	return nil
}

func binarize(row []float32, threshold float32) []float32 {
	out := make([]float32, len(row))
	for i, v := range row {
		if v > threshold {
			out[i] = 1
		}
	}
	return out
}
