package guidance

import (
	"fmt"

	"github.com/teslashibe/go-visnav/pkg/detection"
)

// Direction is where the target sits horizontally.
type Direction int

const (
	Center Direction = iota
	Left
	Right
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "center"
	}
}

// Distance buckets how much of the frame the target fills.
type Distance int

const (
	KeepMoving Distance = iota
	FewSteps
	VeryClose
	Reached
)

// String returns the bucket name.
func (d Distance) String() string {
	switch d {
	case FewSteps:
		return "few_steps"
	case VeryClose:
		return "very_close"
	case Reached:
		return "reached"
	default:
		return "keep_moving"
	}
}

// Classify places a box inside a width x height frame. The horizontal offset
// of the box center is normalized by the frame width; the distance bucket
// comes from the box area as a fraction of the frame area.
func Classify(box detection.BoundingBox, width, height float64, cfg Config) (Direction, Distance) {
	normDx := (box.Center().X - width/2) / width

	dir := Center
	switch {
	case normDx > cfg.DirectionThreshold:
		dir = Right
	case normDx < -cfg.DirectionThreshold:
		dir = Left
	}

	frameArea := width * height
	area := box.Area()

	dist := KeepMoving
	switch {
	case area > cfg.ReachedRatio*frameArea:
		dist = Reached
	case area > cfg.VeryCloseRatio*frameArea:
		dist = VeryClose
	case area > cfg.FewStepsRatio*frameArea:
		dist = FewSteps
	}
	return dir, dist
}

// DistancePhrase describes how far the target is.
func DistancePhrase(d Distance, target string) string {
	switch d {
	case Reached:
		return fmt.Sprintf("You have reached the %s.", target)
	case VeryClose:
		return fmt.Sprintf("The %s is very close.", target)
	case FewSteps:
		return fmt.Sprintf("The %s is ahead, a few steps away.", target)
	default:
		return fmt.Sprintf("The %s is ahead, keep moving.", target)
	}
}

// Phrase builds the full spoken instruction.
func Phrase(dir Direction, dist Distance, target string) string {
	distPhrase := DistancePhrase(dist, target)
	switch dir {
	case Left:
		return fmt.Sprintf("Move left towards the %s. %s", target, distPhrase)
	case Right:
		return fmt.Sprintf("Move right towards the %s. %s", target, distPhrase)
	default:
		return "Go straight. " + distPhrase
	}
}

// MissingWarning is spoken once the target has been out of view long enough.
func MissingWarning(target string) string {
	return fmt.Sprintf("Cannot see the %s, please move your device.", target)
}
