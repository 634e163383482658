// Package yolo runs a YOLOv8 ONNX model through OpenCV's dnn module and
// reports labeled boxes in frame pixels.
package yolo

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"github.com/teslashibe/go-visnav/pkg/detection"
	"gocv.io/x/gocv"
)

// Config holds YOLO detector configuration
type Config struct {
	ModelPath        string
	ConfidenceThresh float32
	NMSThresh        float32
	InputWidth       int
	InputHeight      int
	Filter           detection.FilterConfig
	Logger           *slog.Logger
}

// DefaultConfig returns production defaults for YOLOv8n
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/yolov8n.onnx",
		ConfidenceThresh: 0.3,
		NMSThresh:        0.45,
		InputWidth:       640,
		InputHeight:      640,
		Filter:           detection.DefaultFilterConfig(),
	}
}

// Detector uses YOLOv8 for general object detection
type Detector struct {
	net       gocv.Net
	config    Config
	mu        sync.Mutex
	inputSize image.Point
	logger    *slog.Logger
}

var _ detection.Detector = (*Detector)(nil)

// New loads the ONNX model named in cfg.
func New(cfg Config) (*Detector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("yolo: model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("yolo: failed to load model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Detector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
		logger:    logger.With("component", "detection.yolo"),
	}, nil
}

// Detect decodes a JPEG and runs the model on it.
func (d *Detector) Detect(jpeg []byte) ([]detection.Detection, error) {
	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("yolo: decode image: %w", err)
	}
	defer img.Close()

	return d.DetectMat(img)
}

// DetectMat runs the model on an already decoded BGR image.
func (d *Detector) DetectMat(img gocv.Mat) ([]detection.Detection, error) {
	if img.Empty() {
		return nil, fmt.Errorf("yolo: empty image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	imgW := float32(img.Cols())
	imgH := float32(img.Rows())

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	// Output shape: [1, 84, 8400] - 84 = 4 bbox + 80 classes
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("yolo: read output: %w", err)
	}

	cands := decode(data, output.Cols(), output.Rows(), d.config, imgW, imgH)
	if len(cands.boxes) == 0 {
		return nil, nil
	}

	indices := gocv.NMSBoxes(cands.boxes, cands.scores, d.config.ConfidenceThresh, d.config.NMSThresh)

	dets := make([]detection.Detection, 0, len(indices))
	for _, idx := range indices {
		box := cands.boxes[idx]
		dets = append(dets, detection.Detection{
			Label: Label(cands.classIDs[idx]),
			Score: float64(cands.scores[idx]),
			Box: detection.BoundingBox{
				Left:   float64(box.Min.X),
				Top:    float64(box.Min.Y),
				Right:  float64(box.Max.X),
				Bottom: float64(box.Max.Y),
			},
		})
	}

	dets = detection.Filter(dets, d.config.Filter)
	d.logger.Debug("detections", "count", len(dets))
	return dets, nil
}

// Close releases the detector resources
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
