// Package inference - ONNX Runtime sessions for exported heatmap models.
package inference

import (
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initRuntime initializes the ONNX Runtime environment once per process.
func initRuntime(libPath string) error {
	ortEnvOnce.Do(func() {
		if libPath == "" {
			libPath = defaultSharedLibPath()
		}
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// defaultSharedLibPath picks the bundled onnxruntime library for this
// platform; empty means rely on the system loader.
func defaultSharedLibPath() string {
	if runtime.GOOS == "darwin" {
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.dylib"
		}
		return "third_party/onnxruntime_amd64.dylib"
	}
	if runtime.GOOS == "linux" {
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.so"
		}
		return "third_party/onnxruntime.so"
	}
	return ""
}

// Config describes an exported heatmap localization model.
type Config struct {
	// ModelPath is the path to the .onnx file.
	ModelPath string
	// InputSize is the square pixel size of the model input.
	InputSize int
	// GridDim is the side length of the predicted heatmap grid; the model
	// output is a flat GridDim*GridDim row per image.
	GridDim int
	// InputName and OutputName are the model's tensor names.
	InputName  string
	OutputName string
	// SharedLibPath overrides the bundled onnxruntime library location.
	SharedLibPath string
}

// Session wraps an ONNX Runtime session with preallocated input and output
// tensors for single-image heatmap prediction. Not safe for concurrent use;
// Predict serializes internally.
type Session struct {
	config  Config
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	mu      sync.Mutex
	closed  bool
}

// NewSession loads a heatmap model and allocates its I/O tensors.
//
// Arguments:
//   - config: Model description; ModelPath, InputSize, and GridDim are
//     required, tensor names default to "input"/"heatmap".
//
// Returns:
//   - *Session: Ready-to-run session; callers own Close.
//   - error: Missing model, invalid config, or runtime initialization
//     failure.
func NewSession(config Config) (*Session, error) {
	if config.InputSize <= 0 || config.GridDim <= 0 {
		return nil, errors.Errorf("input size %d and grid dim %d must be positive",
			config.InputSize, config.GridDim)
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, errors.Wrap(err, "model file")
	}
	if config.InputName == "" {
		config.InputName = "input"
	}
	if config.OutputName == "" {
		config.OutputName = "heatmap"
	}

	if err := initRuntime(config.SharedLibPath); err != nil {
		return nil, errors.Wrap(err, "initializing onnxruntime")
	}

	size := int64(config.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(config.GridDim*config.GridDim)))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "creating output tensor")
	}

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{config.InputName},
		[]string{config.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "creating session")
	}

	return &Session{
		config:  config,
		session: session,
		input:   input,
		output:  output,
	}, nil
}

// GridDim returns the side length of the predicted heatmap grid.
func (s *Session) GridDim() int {
	return s.config.GridDim
}

// Close releases the session and its tensors.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
