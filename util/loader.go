// Package util - Loading heatmap dumps and ground-truth masks from disk.
package util

import (
	"encoding/csv"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// maskLuminanceCutoff binarizes 8-bit luminance when reading mask images.
const maskLuminanceCutoff = 128

// HeatmapFile represents one frame's flattened heatmap.
type HeatmapFile struct {
	// Path is the path to the source file.
	Path string
	// Row is the flattened heatmap, length inputDim*inputDim.
	Row []float32
	// Frame is the frame number parsed from the file name.
	Frame int
}

// LoadDirectoryHeatmaps reads all heatmap files from a directory, sorted by
// frame number. File names follow the corpus convention frame-<n>.<ext>.
//
// CSV files (.csv) hold float scores and are read as-is; mask images
// (.png, .jpg, .jpeg) are downsampled to the grid size and binarized on
// luminance.
//
// Arguments:
//   - dir: Directory containing frame-numbered heatmap files.
//   - inputDim: Side length of the square heatmap grid.
//
// Returns:
//   - []HeatmapFile: One entry per file, sorted by frame number.
//   - error: Error if loading or parsing fails.
func LoadDirectoryHeatmaps(dir string, inputDim int) ([]HeatmapFile, error) {
	if inputDim <= 0 {
		return nil, errors.Errorf("input dim must be positive, got %d", inputDim)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var heatmaps []HeatmapFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		path := filepath.Join(dir, file.Name())
		ext := filepath.Ext(file.Name())

		var row []float32
		switch ext {
		case ".csv":
			row, err = readCSVHeatmap(path, inputDim)
		case ".png", ".jpg", ".jpeg":
			row, err = readMaskImage(path, inputDim)
		default:
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}

		frame, err := strconv.Atoi(strings.TrimSuffix(strings.ReplaceAll(file.Name(), "frame-", ""), ext))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing frame number of %s", file.Name())
		}
		heatmaps = append(heatmaps, HeatmapFile{
			Path:  path,
			Row:   row,
			Frame: frame,
		})
	}

	sort.Slice(heatmaps, func(i, j int) bool {
		return heatmaps[i].Frame < heatmaps[j].Frame
	})

	return heatmaps, nil
}

// Rows extracts the heatmap rows in order, ready for batching.
func Rows(files []HeatmapFile) [][]float32 {
	rows := make([][]float32, len(files))
	for i, f := range files {
		rows[i] = f.Row
	}
	return rows
}

// readCSVHeatmap parses a CSV dump into a flat row. The file may hold a
// single record of N floats or an inputDim x inputDim grid.
func readCSVHeatmap(path string, inputDim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var row []float32
	for _, record := range records {
		for _, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %q", field)
			}
			row = append(row, float32(v))
		}
	}

	want := inputDim * inputDim
	if len(row) != want {
		return nil, errors.Errorf("got %d cells, want %d (%dx%d grid)", len(row), want, inputDim, inputDim)
	}
	return row, nil
}

// readMaskImage decodes a mask image, downsamples it to the grid size, and
// binarizes each cell on luminance.
func readMaskImage(path string, inputDim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "decoding mask image")
	}
	img = resize.Resize(uint(inputDim), uint(inputDim), img, resize.Lanczos3)

	row := make([]float32, inputDim*inputDim)
	i := 0
	for y := 0; y < inputDim; y++ {
		for x := 0; x < inputDim; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := (r>>8 + g>>8 + b>>8) / 3
			if lum >= maskLuminanceCutoff {
				row[i] = 1
			}
			i++
		}
	}
	return row, nil
}
