package tracking

import "log/slog"

// Matcher selects how detections are assigned to existing objects.
type Matcher int

const (
	// MatchGreedy visits objects in id order and gives each the nearest free detection.
	MatchGreedy Matcher = iota
	// MatchHungarian solves the global assignment that minimizes total centroid distance.
	MatchHungarian
)

// String returns the matcher name used in config files and logs.
func (m Matcher) String() string {
	switch m {
	case MatchHungarian:
		return "hungarian"
	default:
		return "greedy"
	}
}

// ParseMatcher maps a name to a Matcher. Unknown names resolve to greedy.
func ParseMatcher(name string) Matcher {
	if name == "hungarian" {
		return MatchHungarian
	}
	return MatchGreedy
}

// Config holds all tunable parameters for identity tracking
type Config struct {
	// Matching
	MaxDistance float64 // Centroid distance (pixels) that still counts as the same object
	Matcher     Matcher // Assignment strategy

	// Lifetime
	MaxLostFrames int // Evict once currentFrame - lastSeenFrame exceeds this

	// Smoothing of the reported centroid (matching always uses the raw centroid)
	Smoothing     bool    // Run a 2D Kalman filter per object
	SmoothingStep float64 // Filter time step per frame

	Logger *slog.Logger
}

// DefaultConfig returns the greedy tracker used for object announcements
func DefaultConfig() Config {
	return Config{
		MaxDistance:   100, // ~1/6 of a 640px frame
		Matcher:       MatchGreedy,
		MaxLostFrames: 10,  // ~1/3 s at 30 fps
		Smoothing:     false,
		SmoothingStep: 1.0, // One frame
	}
}

// SmoothConfig returns the default tracker with Kalman-smoothed centroids for overlays
func SmoothConfig() Config {
	cfg := DefaultConfig()
	cfg.Smoothing = true
	return cfg
}

// Option configures a Tracker.
type Option func(*Config)

// WithMaxDistance sets the matching threshold in pixels.
func WithMaxDistance(d float64) Option {
	return func(c *Config) { c.MaxDistance = d }
}

// WithMaxLostFrames sets how many frames an object may go unseen.
func WithMaxLostFrames(n int) Option {
	return func(c *Config) { c.MaxLostFrames = n }
}

// WithMatcher selects the assignment strategy.
func WithMatcher(m Matcher) Option {
	return func(c *Config) { c.Matcher = m }
}

// WithSmoothing enables Kalman smoothing with the given time step.
func WithSmoothing(step float64) Option {
	return func(c *Config) {
		c.Smoothing = true
		if step > 0 {
			c.SmoothingStep = step
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
