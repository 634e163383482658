package guidance

import (
	"log/slog"
	"time"

	"github.com/teslashibe/go-visnav/pkg/haptics"
)

// Config holds all tunable parameters for navigation guidance
type Config struct {
	// Direction
	DirectionThreshold float64 // |normalized center offset| beyond this means left/right

	// Distance, as box area over frame area
	ReachedRatio   float64
	VeryCloseRatio float64
	FewStepsRatio  float64

	// Timing, in frames
	RepeatInterval   int // Re-speak unchanged guidance after this many visible frames
	MaxMissingFrames int // Warn after this many consecutive misses

	// Haptics
	ReachedPulse time.Duration
	MissingPulse time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the thresholds tuned for a handheld phone camera
func DefaultConfig() Config {
	return Config{
		DirectionThreshold: 0.15, // 15% of frame width off center

		ReachedRatio:   0.35,
		VeryCloseRatio: 0.15,
		FewStepsRatio:  0.07,

		RepeatInterval:   30, // ~1 s at 30 fps
		MaxMissingFrames: 15, // ~0.5 s at 30 fps

		ReachedPulse: haptics.ReachedPulse,
		MissingPulse: haptics.MissingPulse,
	}
}
