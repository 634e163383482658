// Package camera captures frames from a local video device and turns them
// into detection frames.
package camera

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-visnav/pkg/detection"
	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultFPS    = 10
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrNotOpen is returned when reading from a camera that is not open.
var ErrNotOpen = errors.New("camera: not open")

// MatDetector detects objects in a decoded image.
type MatDetector interface {
	DetectMat(img gocv.Mat) ([]detection.Detection, error)
}

// Config holds capture settings.
type Config struct {
	DeviceID int
	FPS      int
	Width    int
	Height   int
	Logger   *slog.Logger
}

// DefaultConfig returns the defaults for the first local camera.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		FPS:      DefaultFPS,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}
}

// Source reads frames from a camera and runs a detector on each one.
type Source struct {
	cfg      Config
	detector MatDetector
	logger   *slog.Logger

	mu      sync.Mutex
	capture *gocv.VideoCapture
	index   int
}

// New creates a Source. Call Open before Run.
func New(cfg Config, detector MatDetector) *Source {
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		cfg:      cfg,
		detector: detector,
		logger:   logger.With("component", "camera", "device", cfg.DeviceID),
	}
}

// Open opens the capture device.
func (s *Source) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture != nil {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(s.cfg.DeviceID)
	if err != nil {
		return err
	}
	capture.Set(gocv.VideoCaptureFrameWidth, float64(s.cfg.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(s.cfg.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(s.cfg.FPS))

	s.capture = capture
	return nil
}

// Close releases the capture device.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return nil
	}
	err := s.capture.Close()
	s.capture = nil
	return err
}

// Next reads one image and returns its detections as a Frame.
func (s *Source) Next() (detection.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return detection.Frame{}, ErrNotOpen
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := s.capture.Read(&img); !ok || img.Empty() {
		return detection.Frame{}, errors.New("camera: failed to read frame")
	}

	dets, err := s.detector.DetectMat(img)
	if err != nil {
		return detection.Frame{}, err
	}

	s.index++
	return detection.Frame{
		Index:      s.index,
		Width:      img.Cols(),
		Height:     img.Rows(),
		Detections: dets,
		Timestamp:  time.Now(),
	}, nil
}

// Run reads frames at the configured rate and hands each to emit until ctx
// is done. Read and detection errors are logged and the loop continues.
func (s *Source) Run(ctx context.Context, emit func(detection.Frame)) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			frame, err := s.Next()
			if err != nil {
				if errors.Is(err, ErrNotOpen) {
					return err
				}
				s.logger.Warn("capture failed", "error", err)
				continue
			}
			emit(frame)
		}
	}
}
