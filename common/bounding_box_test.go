package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxFromMask(t *testing.T) {
	tests := []struct {
		name string
		mask []float32
		dim  int
		want *BoundingBox
		ok   bool
	}{
		{
			name: "single cell",
			mask: []float32{0, 0, 0, 0, 1, 0, 0, 0, 0},
			dim:  3,
			want: &BoundingBox{X1: 1, Y1: 1, X2: 2, Y2: 2},
			ok:   true,
		},
		{
			name: "spanning corners",
			mask: []float32{1, 0, 0, 0, 0, 0, 0, 0, 1},
			dim:  3,
			want: &BoundingBox{X1: 0, Y1: 0, X2: 3, Y2: 3},
			ok:   true,
		},
		{
			name: "full row",
			mask: []float32{0, 0, 0, 1, 1, 1, 0, 0, 0},
			dim:  3,
			want: &BoundingBox{X1: 0, Y1: 1, X2: 3, Y2: 2},
			ok:   true,
		},
		{
			name: "empty mask",
			mask: make([]float32, 9),
			dim:  3,
			ok:   false,
		},
		{
			name: "wrong length",
			mask: make([]float32, 8),
			dim:  3,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BoxFromMask(tt.mask, tt.dim)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name     string
		b1       *BoundingBox
		b2       *BoundingBox
		expected float32
	}{
		{
			name:     "identical boxes",
			b1:       &BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 100},
			b2:       &BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 100},
			expected: 1.0,
		},
		{
			name:     "no overlap",
			b1:       &BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 100},
			b2:       &BoundingBox{X1: 200, Y1: 200, X2: 300, Y2: 300},
			expected: 0.0,
		},
		{
			name:     "half overlap",
			b1:       &BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 100},
			b2:       &BoundingBox{X1: 50, Y1: 50, X2: 150, Y2: 150},
			expected: 0.142857, // 2500 / 17500
		},
		{
			name:     "one inside other",
			b1:       &BoundingBox{X1: 0, Y1: 0, X2: 100, Y2: 100},
			b2:       &BoundingBox{X1: 25, Y1: 25, X2: 75, Y2: 75},
			expected: 0.25,
		},
		{
			name:     "both empty",
			b1:       &BoundingBox{},
			b2:       &BoundingBox{},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.b1.IoU(tt.b2), 0.001)
			// IoU is symmetric.
			assert.InDelta(t, tt.b1.IoU(tt.b2), tt.b2.IoU(tt.b1), 0.001)
		})
	}
}

func TestScaleAndClamp(t *testing.T) {
	box := &BoundingBox{X1: 1, Y1: 2, X2: 3, Y2: 3}

	scaled := box.Scale(10, 20)
	assert.Equal(t, &BoundingBox{X1: 10, Y1: 40, X2: 30, Y2: 60}, scaled)

	clamped := scaled.Clamp(25, 50)
	assert.Equal(t, &BoundingBox{X1: 10, Y1: 40, X2: 25, Y2: 50}, clamped)
}

func TestToRect(t *testing.T) {
	box := &BoundingBox{X1: 1.2, Y1: 2.7, X2: 4.9, Y2: 6.1}
	r := box.ToRect()
	assert.Equal(t, 1, r.Min.X)
	assert.Equal(t, 2, r.Min.Y)
	assert.Equal(t, 4, r.Max.X)
	assert.Equal(t, 6, r.Max.Y)
}
