// Package assist runs the per-frame feedback pipeline for one user.
//
// A Session owns a tracker and one speaker for the active mode. Frames are
// fed in order from a single loop (Run or ProcessFrame); target, mode and
// status calls may come from any goroutine.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-visnav/pkg/command"
	"github.com/teslashibe/go-visnav/pkg/detection"
	"github.com/teslashibe/go-visnav/pkg/guidance"
	"github.com/teslashibe/go-visnav/pkg/haptics"
	"github.com/teslashibe/go-visnav/pkg/hub"
	"github.com/teslashibe/go-visnav/pkg/scene"
	"github.com/teslashibe/go-visnav/pkg/speech"
	"github.com/teslashibe/go-visnav/pkg/tracking"
)

// Publisher receives session events for connected clients.
type Publisher interface {
	Publish(kind string, data any) error
}

// Option configures a Session.
type Option func(*Session)

// WithPublisher streams tracks, status and speech events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// WithVibrator sets the haptic output used for guidance pulses.
func WithVibrator(v haptics.Vibrator) Option {
	return func(s *Session) { s.vibrator = v }
}

// WithClock overrides the wall clock used for cooldowns.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

type closableSpeaker interface {
	speech.Speaker
	Close()
}

// Guidance is the per-frame navigation outcome.
type Guidance struct {
	State     guidance.State `json:"state"`
	Found     bool           `json:"found"`
	Direction string         `json:"direction,omitempty"`
	Distance  string         `json:"distance,omitempty"`
	Phrase    string         `json:"phrase,omitempty"`
	Warned    bool           `json:"warned,omitempty"`
}

// FrameResult describes what one frame produced.
type FrameResult struct {
	Frame    int                      `json:"frame"`
	Mode     Mode                     `json:"mode"`
	Tracks   []tracking.TrackedObject `json:"tracks"`
	Guidance *Guidance                `json:"guidance,omitempty"`
	Display  string                   `json:"display,omitempty"`
	Tickets  []speech.Ticket          `json:"tickets,omitempty"`
}

// Status is a point-in-time snapshot of a Session.
type Status struct {
	SessionID uuid.UUID        `json:"session_id"`
	Mode      Mode             `json:"mode"`
	Frame     int              `json:"frame"`
	Frames    int              `json:"frames"`
	Speaking  bool             `json:"speaking"`
	Display   string           `json:"display"`
	Tracks    int              `json:"tracks"`
	Guidance  *guidance.Status `json:"guidance,omitempty"`
}

// Session is one user's assistance pipeline.
type Session struct {
	id        uuid.UUID
	cfg       Config
	sink      speech.Sink
	vibrator  haptics.Vibrator
	publisher Publisher
	now       func() time.Time
	base      *slog.Logger // without session attributes, for subcomponents
	logger    *slog.Logger

	mu        sync.RWMutex
	closed    bool
	mode      Mode
	speaker   closableSpeaker
	tracker   *tracking.Tracker
	navigator *guidance.Navigator // PathNavigation only
	announcer *speech.Announcer   // ObjectDetection and PathNavigation
	people    *scene.PeopleSummary
	lastIndex int
	frames    int
	display   string
	published publishedStatus
}

type publishedStatus struct {
	state   guidance.State
	display string
}

// NewSession creates a Session speaking through sink.
func NewSession(cfg Config, sink speech.Sink, opts ...Option) (*Session, error) {
	if sink == nil {
		return nil, errors.New("assist: nil speech sink")
	}
	if !cfg.Mode.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		id:       uuid.New(),
		cfg:      cfg,
		sink:     sink,
		vibrator: haptics.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.base = logger
	s.logger = logger.With("component", "assist", "session", s.id.String())

	if s.cfg.Tracking.Logger == nil {
		s.cfg.Tracking.Logger = logger
	}
	if s.cfg.Guidance.Logger == nil {
		s.cfg.Guidance.Logger = logger
	}
	s.tracker = tracking.NewWithConfig(s.cfg.Tracking)
	s.enter(cfg.Mode)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// enter builds the pipeline for mode. Caller holds mu or owns s exclusively.
func (s *Session) enter(mode Mode) {
	if s.speaker != nil {
		s.speaker.Close()
	}
	s.mode = mode
	s.navigator = nil
	s.announcer = nil
	s.people = nil
	s.display = ""
	s.tracker.Reset()

	opts := []speech.Option{
		speech.WithLogger(s.base),
		speech.WithClock(s.now),
		speech.WithObserver(func(e speech.Event) { s.publish(hub.EventSpeech, e) }),
	}

	switch mode {
	case ObjectDetection:
		s.speaker = speech.NewQueue(s.sink, opts...)
	default:
		s.speaker = speech.NewArbiter(s.sink, opts...)
	}

	switch mode {
	case ObjectDetection:
		s.announcer = speech.NewAnnouncer(s.cfg.Announcer, s.speaker)
		s.announcer.SetClock(s.now)
	case PathNavigation:
		s.announcer = speech.NewAnnouncer(s.cfg.Announcer, s.speaker)
		s.announcer.SetClock(s.now)
		s.navigator = guidance.NewNavigator(s.cfg.Guidance, s.speaker, s.vibrator)
	case FaceAnalysis:
		s.people = scene.NewPeopleSummary()
		s.people.Now = s.now
	}
	s.logger.Info("mode entered", "mode", mode.String())
}

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches pipelines. The previous speaker stops taking requests
// and the navigation target, tracks and cooldowns start over.
func (s *Session) SetMode(mode Mode) error {
	if !mode.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.mode == mode {
		s.mu.Unlock()
		return nil
	}
	s.enter(mode)
	s.mu.Unlock()

	s.publish(hub.EventMode, map[string]Mode{"mode": mode})
	return nil
}

// SetTarget starts navigating toward label. An empty label cancels.
func (s *Session) SetTarget(label string) (guidance.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.navigable(); err != nil {
		return guidance.Status{}, err
	}
	s.navigator.SetTarget(label)
	return s.navigator.Status(), nil
}

// ClearTarget stops navigation.
func (s *Session) ClearTarget() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.navigable(); err != nil {
		return err
	}
	s.navigator.Cancel()
	return nil
}

// Command applies a spoken "navigate to <object>" command. A command that
// cannot be parsed clears the current target and returns command.ErrNoTarget.
func (s *Session) Command(text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.navigable(); err != nil {
		return "", err
	}

	target, err := command.ParseNavigate(text)
	if err != nil {
		s.navigator.Cancel()
		s.logger.Info("navigation command not understood", "text", text)
		return "", err
	}
	s.navigator.SetTarget(target)
	return target, nil
}

func (s *Session) navigable() error {
	if s.closed {
		return ErrClosed
	}
	if s.navigator == nil {
		return fmt.Errorf("%w: navigation needs %s mode", ErrWrongMode, PathNavigation)
	}
	return nil
}

// ProcessFrame runs one frame through the active pipeline. Frames with a
// zero Index are numbered after the previous one; an explicit Index must
// increase.
func (s *Session) ProcessFrame(frame detection.Frame) (FrameResult, error) {
	if frame.Width < 0 || frame.Height < 0 {
		return FrameResult{}, fmt.Errorf("%w: negative size %dx%d", ErrInvalidFrame, frame.Width, frame.Height)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return FrameResult{}, ErrClosed
	}
	switch {
	case frame.Index == 0:
		frame.Index = s.lastIndex + 1
	case frame.Index <= s.lastIndex:
		last := s.lastIndex
		s.mu.Unlock()
		return FrameResult{}, fmt.Errorf("%w: frame %d is not after %d", ErrInvalidFrame, frame.Index, last)
	}
	s.lastIndex = frame.Index
	s.frames++

	tracks := s.tracker.Update(frame.Detections, frame.Index)
	res := FrameResult{Frame: frame.Index, Mode: s.mode, Tracks: tracks}

	switch s.mode {
	case ObjectDetection:
		res.Tickets = s.announce(tracks, res.Tickets)

	case PathNavigation:
		// Announce first so guidance takes the pending slot when busy.
		res.Tickets = s.announce(tracks, res.Tickets)
		g := s.navigator.Update(frame)
		res.Tickets = append(res.Tickets, g.Tickets...)
		res.Guidance = &Guidance{State: g.State, Found: g.Found, Phrase: g.Phrase, Warned: g.Warned}
		if g.Found {
			res.Guidance.Direction = g.Direction.String()
			res.Guidance.Distance = g.Distance.String()
		}
		s.display = s.navigator.Status().Display

	case EnvironmentAnalysis:
		desc := scene.Describe(detection.CountLabels(frame.Detections), scene.Environment)
		s.display = desc
		if t := s.speaker.Submit(speech.Request{Text: desc}); t.Accepted() {
			res.Tickets = append(res.Tickets, t)
		}

	case FaceAnalysis:
		n := detection.CountLabels(frame.Detections)[scene.PeopleLabel]
		display, say, speak := s.people.Observe(n, s.speaker.Busy())
		s.display = display
		if speak {
			res.Tickets = append(res.Tickets, s.speaker.Submit(speech.Request{Text: say, Repeat: true}))
		}
	}
	res.Display = s.display

	changed := s.statusChanged()
	status := s.statusLocked()
	s.mu.Unlock()

	s.publish(hub.EventTracks, res.Tracks)
	if changed {
		s.publish(hub.EventStatus, status)
	}
	return res, nil
}

func (s *Session) announce(tracks []tracking.TrackedObject, tickets []speech.Ticket) []speech.Ticket {
	labels := make([]string, 0, len(tracks))
	for _, o := range tracks {
		labels = append(labels, o.Detection.Label)
	}
	if t, ok := s.announcer.Announce(labels); ok {
		tickets = append(tickets, t)
	}
	return tickets
}

// statusChanged records what was last published. Caller holds mu.
func (s *Session) statusChanged() bool {
	cur := publishedStatus{display: s.display}
	if s.navigator != nil {
		cur.state = s.navigator.Status().State
	}
	if cur == s.published {
		return false
	}
	s.published = cur
	return true
}

// Run processes frames until the channel closes or ctx is cancelled.
// Invalid frames are logged and skipped.
func (s *Session) Run(ctx context.Context, frames <-chan detection.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if _, err := s.ProcessFrame(frame); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				s.logger.Warn("frame skipped", "frame", frame.Index, "error", err)
			}
		}
	}
}

// Tracks returns the live tracked objects, ordered by id.
func (s *Session) Tracks() []tracking.TrackedObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Objects()
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	st := Status{
		SessionID: s.id,
		Mode:      s.mode,
		Frame:     s.lastIndex,
		Frames:    s.frames,
		Speaking:  s.speaker.Busy(),
		Display:   s.display,
		Tracks:    s.tracker.Len(),
	}
	if s.navigator != nil {
		g := s.navigator.Status()
		st.Guidance = &g
	}
	return st
}

// Close stops the speaker. Utterances already playing finish on their own.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.speaker.Close()
	s.logger.Info("session closed", "frames", s.frames)
}

func (s *Session) publish(kind string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(kind, data); err != nil {
		s.logger.Warn("publish event", "type", kind, "error", err)
	}
}
