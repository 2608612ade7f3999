package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-eval/heatmap"
	"github.com/nvr-ai/go-eval/inference"
	"github.com/nvr-ai/go-eval/metrics"
	"github.com/nvr-ai/go-eval/util"
	"github.com/nvr-ai/go-eval/visual"
)

const (
	// DefaultInputDim is the default side length of the heatmap grid.
	DefaultInputDim = 56
	// DefaultThresholds are the heatmap thresholds evaluated by default.
	DefaultThresholds = "0.25,0.5,0.75"
	// DefaultModelInputSize is the default square model input in pixels.
	DefaultModelInputSize = 224
)

func main() {
	var (
		gtDir          string
		predDir        string
		modelPath      string
		framesDir      string
		overlayDir     string
		thresholdList  string
		inputDim       int
		modelInputSize int
	)
	flag.StringVar(&gtDir, "gt-dir", "", "Directory of ground-truth masks (frame-<n>.csv or mask images)")
	flag.StringVar(&predDir, "pred-dir", "", "Directory of predicted heatmap dumps (frame-<n>.csv)")
	flag.StringVar(&modelPath, "model", "", "ONNX heatmap model; predicts heatmaps from -frames-dir instead of -pred-dir")
	flag.StringVar(&framesDir, "frames-dir", "", "Directory of source frames (required with -model or -overlay-dir)")
	flag.StringVar(&overlayDir, "overlay-dir", "", "Write per-frame heatmap overlays to this directory")
	flag.StringVar(&thresholdList, "thresholds", DefaultThresholds, "Comma-separated heatmap thresholds")
	flag.IntVar(&inputDim, "input-dim", DefaultInputDim, "Side length of the square heatmap grid")
	flag.IntVar(&modelInputSize, "model-input-size", DefaultModelInputSize, "Square model input size in pixels")
	flag.Parse()

	if gtDir == "" {
		log.Fatal("-gt-dir is required")
	}
	if (predDir == "") == (modelPath == "") {
		log.Fatal("exactly one of -pred-dir or -model is required")
	}
	if modelPath != "" && framesDir == "" {
		log.Fatal("-model requires -frames-dir")
	}

	thresholds, err := parseThresholds(thresholdList)
	if err != nil {
		log.Fatalf("invalid -thresholds: %v", err)
	}

	gtFiles, err := util.LoadDirectoryHeatmaps(gtDir, inputDim)
	if err != nil {
		log.Fatalf("loading ground truth: %v", err)
	}
	if len(gtFiles) == 0 {
		log.Fatalf("no ground-truth files in %s", gtDir)
	}

	var predFiles []util.HeatmapFile
	if predDir != "" {
		predFiles, err = util.LoadDirectoryHeatmaps(predDir, inputDim)
		if err != nil {
			log.Fatalf("loading predictions: %v", err)
		}
	} else {
		predFiles, err = predictHeatmaps(modelPath, framesDir, inputDim, modelInputSize)
		if err != nil {
			log.Fatalf("predicting heatmaps: %v", err)
		}
	}

	if len(predFiles) != len(gtFiles) {
		log.Fatalf("got %d predictions for %d ground-truth frames", len(predFiles), len(gtFiles))
	}
	for i := range gtFiles {
		if gtFiles[i].Frame != predFiles[i].Frame {
			log.Fatalf("frame mismatch at index %d: gt frame %d, prediction frame %d",
				i, gtFiles[i].Frame, predFiles[i].Frame)
		}
	}

	gt, err := heatmap.FromRows(util.Rows(gtFiles))
	if err != nil {
		log.Fatalf("batching ground truth: %v", err)
	}
	pred, err := heatmap.FromRows(util.Rows(predFiles))
	if err != nil {
		log.Fatalf("batching predictions: %v", err)
	}

	if min, max, mean, err := heatmap.Stats(pred); err == nil {
		log.Printf("evaluating %d frames, prediction scores min=%.3f max=%.3f mean=%.3f",
			len(predFiles), min, max, mean)
	}

	ms := metrics.GetMetrics(inputDim, thresholds)
	names := make([]string, len(ms))
	values := make([]float32, len(ms))
	for i, m := range ms {
		v, err := m.Compute(gt, pred)
		if err != nil {
			log.Fatalf("computing %s: %v", m.Name, err)
		}
		names[i] = m.Name
		values[i] = v
	}

	line, err := metrics.FormatResults(names, values)
	if err != nil {
		log.Fatalf("formatting results: %v", err)
	}
	fmt.Println(line)

	if overlayDir != "" {
		if framesDir == "" {
			log.Fatal("-overlay-dir requires -frames-dir")
		}
		if err := renderOverlays(overlayDir, framesDir, gtFiles, predFiles, thresholds[0], inputDim); err != nil {
			log.Fatalf("rendering overlays: %v", err)
		}
	}
}

// parseThresholds splits a comma-separated threshold list, preserving order.
func parseThresholds(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	thresholds := make([]float32, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, float32(v))
	}
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("no thresholds given")
	}
	return thresholds, nil
}

// predictHeatmaps runs the ONNX model over every frame in the directory.
func predictHeatmaps(modelPath, framesDir string, inputDim, modelInputSize int) ([]util.HeatmapFile, error) {
	frames, err := util.LoadDirectoryImageFiles(framesDir)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames in %s", framesDir)
	}

	session, err := inference.NewSession(inference.Config{
		ModelPath: modelPath,
		InputSize: modelInputSize,
		GridDim:   inputDim,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	predictions := make([]util.HeatmapFile, 0, len(frames))
	for _, frame := range frames {
		img, err := decodeImage(frame.Path)
		if err != nil {
			return nil, err
		}
		row, err := session.Predict(img)
		if err != nil {
			return nil, fmt.Errorf("predicting frame %d: %w", frame.Frame, err)
		}
		predictions = append(predictions, util.HeatmapFile{
			Path:  frame.Path,
			Row:   row,
			Frame: frame.Frame,
		})
	}
	return predictions, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// renderOverlays writes one overlay image per evaluated frame.
func renderOverlays(overlayDir, framesDir string, gtFiles, predFiles []util.HeatmapFile, threshold float32, inputDim int) error {
	if err := os.MkdirAll(overlayDir, 0o755); err != nil {
		return err
	}
	frames, err := util.LoadDirectoryImageFiles(framesDir)
	if err != nil {
		return err
	}
	framePaths := make(map[int]string, len(frames))
	for _, frame := range frames {
		framePaths[frame.Frame] = frame.Path
	}

	opts := visual.DefaultOptions(inputDim)
	for i, pf := range predFiles {
		framePath, ok := framePaths[pf.Frame]
		if !ok {
			log.Printf("no source frame %d in %s, skipping overlay", pf.Frame, framesDir)
			continue
		}
		outPath := fmt.Sprintf("%s/frame-%d.jpg", overlayDir, pf.Frame)
		if err := visual.RenderOverlay(framePath, outPath, gtFiles[i].Row, pf.Row, threshold, opts); err != nil {
			return err
		}
	}
	return nil
}
