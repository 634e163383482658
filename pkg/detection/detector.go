package detection

import "sort"

// Detector is the interface for object detection backends.
type Detector interface {
	// Detect finds objects in the encoded image.
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources
	Close() error
}

// FilterConfig trims raw detector output before it reaches the pipeline.
type FilterConfig struct {
	MinScore   float64 // Drop detections below this score
	MaxResults int     // Keep at most this many, highest score first (0 = unlimited)
}

// DefaultFilterConfig matches the on-device detector options: score 0.3, top 5.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinScore:   0.3,
		MaxResults: 5,
	}
}

// Filter drops low-score detections and keeps the top MaxResults by score.
// Equal scores keep their input order.
func Filter(dets []Detection, cfg FilterConfig) []Detection {
	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Score >= cfg.MinScore {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if cfg.MaxResults > 0 && len(out) > cfg.MaxResults {
		out = out[:cfg.MaxResults]
	}
	return out
}

// CountLabels counts detections per label.
func CountLabels(dets []Detection) map[string]int {
	counts := make(map[string]int, len(dets))
	for _, d := range dets {
		counts[d.Label]++
	}
	return counts
}

// FindFirst returns the first detection matching label (case-insensitive)
// whose box is usable inside a width x height frame. The returned box is clamped.
func FindFirst(dets []Detection, label string, width, height float64) (Detection, bool) {
	for _, d := range dets {
		if !d.Matches(label) {
			continue
		}
		if !d.Box.Finite() {
			continue
		}
		clamped := d.Box.Clamp(width, height)
		if !clamped.Valid() {
			continue
		}
		d.Box = clamped
		return d, true
	}
	return Detection{}, false
}
