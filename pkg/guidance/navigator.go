// Package guidance steers the user toward one named target object.
//
// A Navigator consumes one detection frame at a time. While the target is
// visible it speaks direction and distance, repeating unchanged advice only
// every RepeatInterval visible frames. When the target disappears for
// MaxMissingFrames consecutive frames it warns once, pulses the vibrator and
// describes what is visible instead.
package guidance

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/teslashibe/go-visnav/pkg/detection"
	"github.com/teslashibe/go-visnav/pkg/haptics"
	"github.com/teslashibe/go-visnav/pkg/scene"
	"github.com/teslashibe/go-visnav/pkg/speech"
)

// State is the navigator's position in the guidance lifecycle.
type State int

const (
	NoTarget State = iota
	TargetVisible
	TargetMissingUnwarned
	TargetMissingWarned
)

var stateNames = [...]string{"no_target", "target_visible", "target_missing", "target_missing_warned"}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("guidance: unknown state %q", b)
}

// counters is reset whenever the target changes.
type counters struct {
	missingCount         int
	warnedMissing        bool
	lastGuidancePhrase   string
	lastSpokenPhrase     string
	lastSpokenFrameIndex int
	frameCounter         int // advances once per frame with the target in view
}

// Result describes what one Update did.
type Result struct {
	State     State
	Found     bool
	Target    detection.Detection // clamped to the frame when Found
	Direction Direction
	Distance  Distance
	Phrase    string
	Warned    bool // the missing-target warning fired on this frame
	Tickets   []speech.Ticket
}

// Status is a read-only snapshot for displays.
type Status struct {
	Target       string `json:"target"`
	State        State  `json:"state"`
	LastGuidance string `json:"last_guidance"`
	Missing      bool   `json:"missing"`
	MissingCount int    `json:"missing_count"`
	Display      string `json:"display"`
}

// Navigator is the guidance state machine. Update is meant to be driven by
// a single frame loop; Status and SetTarget may be called from anywhere.
type Navigator struct {
	cfg      Config
	speaker  speech.Speaker
	vibrator haptics.Vibrator
	logger   *slog.Logger

	mu     sync.RWMutex
	target string
	state  State
	c      counters
}

// NewNavigator creates a Navigator with no target.
func NewNavigator(cfg Config, speaker speech.Speaker, vibrator haptics.Vibrator) *Navigator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if vibrator == nil {
		vibrator = haptics.Nop{}
	}
	return &Navigator{
		cfg:      cfg,
		speaker:  speaker,
		vibrator: vibrator,
		logger:   logger.With("component", "guidance"),
	}
}

// SetTarget starts guiding toward label. An empty label cancels.
func (n *Navigator) SetTarget(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		n.Cancel()
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = label
	n.state = TargetMissingUnwarned
	n.c = counters{}
	n.logger.Info("target set", "target", label)
}

// Cancel stops guidance. Speech already in flight is not interrupted.
func (n *Navigator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.target != "" {
		n.logger.Info("target cleared", "target", n.target)
	}
	n.target = ""
	n.state = NoTarget
	n.c = counters{}
}

// Target returns the active target, or "" when idle.
func (n *Navigator) Target() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.target
}

// Status returns a snapshot of the guidance state.
func (n *Navigator) Status() Status {
	n.mu.RLock()
	defer n.mu.RUnlock()

	s := Status{
		Target:       n.target,
		State:        n.state,
		LastGuidance: n.c.lastGuidancePhrase,
		Missing:      n.c.warnedMissing,
		MissingCount: n.c.missingCount,
	}
	switch {
	case n.target == "":
	case n.c.warnedMissing:
		s.Display = "Looking for " + n.target + "..."
	default:
		s.Display = "Target: " + n.target
	}
	return s
}

// Update advances the state machine by one frame.
func (n *Navigator) Update(frame detection.Frame) Result {
	var (
		requests []speech.Request
		pulse    time.Duration
	)

	n.mu.Lock()
	if n.target == "" {
		n.mu.Unlock()
		return Result{State: NoTarget}
	}

	res := Result{}
	var found bool
	var target detection.Detection
	if frame.HasSize() {
		target, found = detection.FindFirst(frame.Detections, n.target, float64(frame.Width), float64(frame.Height))
	}

	if found {
		n.c.missingCount = 0
		n.c.warnedMissing = false

		dir, dist := Classify(target.Box, float64(frame.Width), float64(frame.Height), n.cfg)
		phrase := Phrase(dir, dist, n.target)
		n.c.lastGuidancePhrase = phrase

		if phrase != n.c.lastSpokenPhrase || n.c.frameCounter-n.c.lastSpokenFrameIndex > n.cfg.RepeatInterval {
			requests = append(requests, speech.Request{
				Text:   phrase,
				Repeat: phrase == n.c.lastSpokenPhrase,
			})
			n.c.lastSpokenPhrase = phrase
			n.c.lastSpokenFrameIndex = n.c.frameCounter
		}
		n.c.frameCounter++

		if dist == Reached {
			pulse = n.cfg.ReachedPulse
		}

		n.state = TargetVisible
		res.Found = true
		res.Target = target
		res.Direction = dir
		res.Distance = dist
		res.Phrase = phrase
	} else {
		n.c.missingCount++
		if n.c.missingCount >= n.cfg.MaxMissingFrames && !n.c.warnedMissing {
			n.c.warnedMissing = true
			res.Warned = true
			requests = append(requests, speech.Request{Text: MissingWarning(n.target), Priority: speech.Flush})
			pulse = n.cfg.MissingPulse

			if desc := scene.Describe(visibleCounts(frame.Detections), scene.MissingTarget); desc != "" {
				requests = append(requests, speech.Request{Text: desc})
			}
			n.logger.Info("target missing", "target", n.target, "frames", n.c.missingCount)
		}
		if n.c.warnedMissing {
			n.state = TargetMissingWarned
		} else {
			n.state = TargetMissingUnwarned
		}
	}
	res.State = n.state
	n.mu.Unlock()

	for _, req := range requests {
		res.Tickets = append(res.Tickets, n.speaker.Submit(req))
	}
	if pulse > 0 {
		n.vibrator.Vibrate(pulse)
	}
	return res
}

// visibleCounts groups labels case-insensitively for the scene description.
func visibleCounts(dets []detection.Detection) map[string]int {
	counts := make(map[string]int, len(dets))
	for _, d := range dets {
		counts[strings.ToLower(d.Label)]++
	}
	return counts
}
