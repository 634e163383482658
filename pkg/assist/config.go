package assist

import (
	"log/slog"

	"github.com/teslashibe/go-visnav/pkg/guidance"
	"github.com/teslashibe/go-visnav/pkg/speech"
	"github.com/teslashibe/go-visnav/pkg/tracking"
)

// Config holds the parameters of every pipeline a Session can run
type Config struct {
	Mode Mode // Initial mode

	Tracking  tracking.Config
	Guidance  guidance.Config
	Announcer speech.AnnouncerConfig

	Logger *slog.Logger
}

// DefaultConfig starts in object detection with the default tuning
func DefaultConfig() Config {
	return Config{
		Mode:      ObjectDetection,
		Tracking:  tracking.DefaultConfig(),
		Guidance:  guidance.DefaultConfig(),
		Announcer: speech.DefaultAnnouncerConfig(),
	}
}
