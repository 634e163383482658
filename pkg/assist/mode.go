package assist

import (
	"fmt"
	"strings"
)

// Mode selects which feedback pipeline a Session runs.
type Mode int

const (
	// ObjectDetection names objects as they appear, in order, through a FIFO queue.
	ObjectDetection Mode = iota
	// PathNavigation guides the user toward a target and names new objects.
	PathNavigation
	// EnvironmentAnalysis describes everything in view.
	EnvironmentAnalysis
	// FaceAnalysis counts the people in view.
	FaceAnalysis
)

var modeNames = [...]string{"object_detection", "path_navigation", "environment_analysis", "face_analysis"}

func (m Mode) valid() bool {
	return m >= 0 && int(m) < len(modeNames)
}

// String returns the mode name used in the API.
func (m Mode) String() string {
	if m.valid() {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode maps a name to a Mode. Dashes and case are ignored.
func ParseMode(name string) (Mode, error) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
