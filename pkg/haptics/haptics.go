// Package haptics delivers vibration pulses to the user's device.
package haptics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-visnav/pkg/hub"
)

// Standard pulse lengths.
const (
	ReachedPulse = 300 * time.Millisecond
	MissingPulse = 150 * time.Millisecond
)

// Vibrator fires a single pulse. Implementations must not block.
type Vibrator interface {
	Vibrate(d time.Duration)
}

// Nop discards pulses.
type Nop struct{}

// Vibrate implements Vibrator.
func (Nop) Vibrate(time.Duration) {}

// Logger logs pulses at debug level.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a logging Vibrator.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l.With("component", "haptics")}
}

// Vibrate implements Vibrator.
func (v *Logger) Vibrate(d time.Duration) {
	v.logger.Debug("vibrate", "ms", d.Milliseconds())
}

// Pulse is the payload of a haptic event.
type Pulse struct {
	DurationMs int64 `json:"duration_ms"`
}

// Publisher emits typed events to connected clients.
type Publisher interface {
	Publish(kind string, data any) error
}

// Remote forwards pulses to clients that own the vibration motor.
type Remote struct {
	out    Publisher
	logger *slog.Logger
}

// NewRemote creates a Vibrator that publishes haptic events.
func NewRemote(out Publisher, l *slog.Logger) *Remote {
	if l == nil {
		l = slog.Default()
	}
	return &Remote{out: out, logger: l.With("component", "haptics.remote")}
}

// Vibrate implements Vibrator.
func (r *Remote) Vibrate(d time.Duration) {
	if err := r.out.Publish(hub.EventHaptic, Pulse{DurationMs: d.Milliseconds()}); err != nil {
		r.logger.Warn("publish pulse", "error", err)
	}
}

// Multi fans a pulse out to several vibrators.
type Multi []Vibrator

// Vibrate implements Vibrator.
func (m Multi) Vibrate(d time.Duration) {
	for _, v := range m {
		v.Vibrate(d)
	}
}

// Recorder keeps every pulse for tests.
type Recorder struct {
	mu     sync.Mutex
	pulses []time.Duration
}

// Vibrate implements Vibrator.
func (r *Recorder) Vibrate(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulses = append(r.pulses, d)
}

// Pulses returns the recorded pulse lengths in order.
func (r *Recorder) Pulses() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.pulses))
	copy(out, r.pulses)
	return out
}

var (
	_ Vibrator = Nop{}
	_ Vibrator = (*Logger)(nil)
	_ Vibrator = (*Remote)(nil)
	_ Vibrator = Multi(nil)
	_ Vibrator = (*Recorder)(nil)
)
