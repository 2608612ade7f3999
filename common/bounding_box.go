// Package common - Bounding boxes shared by the evaluator and renderers.
package common

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// BoundingBox is an axis-aligned box in heatmap-grid coordinates. X2 and Y2
// are exclusive, like image.Rectangle.
type BoundingBox struct {
	Label          string
	Confidence     float32
	X1, Y1, X2, Y2 float32
}

// BoxFromMask extracts the smallest axis-aligned box covering every active
// cell of a binarized heatmap row.
//
// Arguments:
//   - mask: Flattened binarized heatmap, length inputDim*inputDim,
//     positive cells > 0.
//   - inputDim: Side length of the square grid.
//
// Returns:
//   - *BoundingBox: Box in grid coordinates (columns as X, rows as Y).
//   - bool: False when the mask has no active cell or the wrong length.
func BoxFromMask(mask []float32, inputDim int) (*BoundingBox, bool) {
	if inputDim <= 0 || len(mask) != inputDim*inputDim {
		return nil, false
	}
	minRow, minCol := inputDim, inputDim
	maxRow, maxCol := -1, -1
	for r := 0; r < inputDim; r++ {
		for c := 0; c < inputDim; c++ {
			if mask[r*inputDim+c] <= 0 {
				continue
			}
			if r < minRow {
				minRow = r
			}
			if r > maxRow {
				maxRow = r
			}
			if c < minCol {
				minCol = c
			}
			if c > maxCol {
				maxCol = c
			}
		}
	}
	if maxRow < 0 {
		return nil, false
	}
	return &BoundingBox{
		X1: float32(minCol),
		Y1: float32(minRow),
		X2: float32(maxCol + 1),
		Y2: float32(maxRow + 1),
	}, true
}

func (b *BoundingBox) String() string {
	return fmt.Sprintf("Box %s (confidence %f): (%f, %f), (%f, %f)",
		b.Label, b.Confidence, b.X1, b.Y1, b.X2, b.Y2)
}

// Scale maps the box from grid coordinates to pixel coordinates.
func (b *BoundingBox) Scale(sx, sy float32) *BoundingBox {
	return &BoundingBox{
		Label:      b.Label,
		Confidence: b.Confidence,
		X1:         b.X1 * sx,
		Y1:         b.Y1 * sy,
		X2:         b.X2 * sx,
		Y2:         b.Y2 * sy,
	}
}

// Clamp restricts the box to [0, width) x [0, height).
func (b *BoundingBox) Clamp(width, height float32) *BoundingBox {
	return &BoundingBox{
		Label:      b.Label,
		Confidence: b.Confidence,
		X1:         math32.Max(0, math32.Min(b.X1, width)),
		Y1:         math32.Max(0, math32.Min(b.Y1, height)),
		X2:         math32.Max(0, math32.Min(b.X2, width)),
		Y2:         math32.Max(0, math32.Min(b.Y2, height)),
	}
}

// ToRect converts the box to an image.Rectangle for drawing.
//
// This won't be entirely precise due to conversion to the integral
// rectangles from the image.Image library, but boxes are only drawn or
// compared approximately, so some imprecision is OK.
func (b *BoundingBox) ToRect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Canon()
}

// Intersection calculates the intersection area between two boxes.
func (b *BoundingBox) Intersection(other *BoundingBox) float32 {
	r1 := b.ToRect()
	r2 := other.ToRect()
	intersected := r1.Intersect(r2).Canon().Size()
	return float32(intersected.X * intersected.Y)
}

// Union calculates the union area between two boxes.
func (b *BoundingBox) Union(other *BoundingBox) float32 {
	intersectArea := b.Intersection(other)
	r1 := b.ToRect()
	r2 := other.ToRect()
	size1 := r1.Size()
	size2 := r2.Size()
	totalArea := float32(size1.X*size1.Y + size2.X*size2.Y)
	return totalArea - intersectArea
}

// IoU calculates the Intersection over Union between two boxes.
//
// Returns:
//   - The IoU value between 0 and 1; 0 when the union is empty.
func (b *BoundingBox) IoU(other *BoundingBox) float32 {
	union := b.Union(other)
	if union <= 0 {
		return 0
	}
	return b.Intersection(other) / union
}
