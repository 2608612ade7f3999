package inference

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Predict runs the model on one image and returns its flattened heatmap
// row, length GridDim*GridDim.
//
// Arguments:
//   - img: The image to score; resized to the model input size internally.
//
// Returns:
//   - []float32: A copy of the predicted heatmap row.
//   - error: Closed session or inference failure.
func (s *Session) Predict(img image.Image) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("session is closed")
	}
	if img == nil {
		return nil, errors.New("image is nil")
	}

	if err := s.prepareInput(img); err != nil {
		return nil, err
	}
	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "running inference")
	}

	out := s.output.GetData()
	row := make([]float32, len(out))
	copy(row, out)
	return row, nil
}

// prepareInput fills the preallocated input tensor CHW with the resized,
// 0-1 normalized image.
func (s *Session) prepareInput(img image.Image) error {
	data := s.input.GetData()
	size := s.config.InputSize
	channelSize := size * size
	if len(data) < channelSize*3 {
		return errors.Errorf("input tensor only holds %d floats, needs %d",
			len(data), channelSize*3)
	}
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	img = resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
			i++
		}
	}
	return nil
}
