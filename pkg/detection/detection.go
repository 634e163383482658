// Package detection defines the per-frame object observations that feed
// tracking and guidance, plus the geometry helpers shared by both.
package detection

import (
	"math"
	"strings"
	"time"
)

// Point is a position in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// BoundingBox is an axis-aligned box in frame pixels.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns Right-Left.
func (b BoundingBox) Width() float64 { return b.Right - b.Left }

// Height returns Bottom-Top.
func (b BoundingBox) Height() float64 { return b.Bottom - b.Top }

// Area returns width*height. Degenerate boxes may yield zero or negative area.
func (b BoundingBox) Area() float64 { return b.Width() * b.Height() }

// Center returns the centroid of the box.
func (b BoundingBox) Center() Point {
	return Point{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Finite reports whether every coordinate is a real number.
func (b BoundingBox) Finite() bool {
	for _, v := range [...]float64{b.Left, b.Top, b.Right, b.Bottom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Valid reports whether the box is finite with positive width and height.
func (b BoundingBox) Valid() bool {
	return b.Finite() && b.Width() > 0 && b.Height() > 0
}

// Clamp intersects the box with a width x height frame.
// A box entirely outside the frame comes back degenerate.
func (b BoundingBox) Clamp(width, height float64) BoundingBox {
	return BoundingBox{
		Left:   math.Max(0, math.Min(b.Left, width)),
		Top:    math.Max(0, math.Min(b.Top, height)),
		Right:  math.Max(0, math.Min(b.Right, width)),
		Bottom: math.Max(0, math.Min(b.Bottom, height)),
	}
}

// Detection is one labeled box reported by a detector for a single frame.
type Detection struct {
	Label string      `json:"label"`
	Score float64     `json:"score"`
	Box   BoundingBox `json:"box"`
}

// Center returns the centroid of the detection's box.
func (d Detection) Center() Point { return d.Box.Center() }

// Matches reports whether the label equals name, ignoring case.
func (d Detection) Matches(name string) bool {
	return strings.EqualFold(d.Label, name)
}

// Frame is the detector output for one camera frame.
type Frame struct {
	Index      int         `json:"index"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Detections []Detection `json:"detections"`
	Timestamp  time.Time   `json:"timestamp,omitempty"`
}

// HasSize reports whether the frame dimensions are usable for geometry.
func (f Frame) HasSize() bool {
	return f.Width > 0 && f.Height > 0
}

