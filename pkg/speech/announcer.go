package speech

import (
	"strings"
	"sync"
	"time"
)

// AnnouncerConfig controls new-object announcements.
type AnnouncerConfig struct {
	Cooldown  time.Duration // Per-label quiet period
	Separator string        // Joins labels first seen in the same frame
}

// DefaultAnnouncerConfig returns a 3 s per-label cooldown.
func DefaultAnnouncerConfig() AnnouncerConfig {
	return AnnouncerConfig{
		Cooldown:  3 * time.Second,
		Separator: ", ",
	}
}

// Announcer names objects as they appear, at most once per label per
// cooldown window.
type Announcer struct {
	cfg     AnnouncerConfig
	speaker Speaker
	now     func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewAnnouncer creates an Announcer that forwards to speaker.
func NewAnnouncer(cfg AnnouncerConfig, speaker Speaker) *Announcer {
	if cfg.Separator == "" {
		cfg.Separator = ", "
	}
	return &Announcer{
		cfg:     cfg,
		speaker: speaker,
		now:     time.Now,
		last:    make(map[string]time.Time),
	}
}

// SetClock overrides the wall clock.
func (a *Announcer) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
}

// Announce speaks the labels whose cooldown has expired as one utterance.
// Duplicate labels in one call are spoken once. The second return is false
// when nothing was due.
func (a *Announcer) Announce(labels []string) (Ticket, bool) {
	a.mu.Lock()
	now := a.now()
	seen := make(map[string]bool, len(labels))
	due := make([]string, 0, len(labels))
	for _, label := range labels {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		if last, ok := a.last[label]; ok && now.Sub(last) <= a.cfg.Cooldown {
			continue
		}
		due = append(due, label)
	}
	for _, label := range due {
		a.last[label] = now
	}
	a.mu.Unlock()

	if len(due) == 0 {
		return Ticket{}, false
	}
	return a.speaker.Submit(Request{Text: strings.Join(due, a.cfg.Separator), SubmittedAt: now}), true
}

// Forget clears every cooldown.
func (a *Announcer) Forget() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = make(map[string]time.Time)
}
