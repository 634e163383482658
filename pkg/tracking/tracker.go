// Package tracking assigns persistent identities to per-frame detections.
//
// Each Update reconciles an unordered detection list with the objects seen so
// far: nearby detections keep their object's id, the rest become new objects,
// and objects unseen for too long are evicted. Ids start at 1, grow
// monotonically and are never reused.
package tracking

import (
	"log/slog"
	"sort"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
	"github.com/teslashibe/go-visnav/pkg/detection"
)

// TrackedObject is a detection with an identity that persists across frames.
type TrackedObject struct {
	ID             int                 `json:"id"`
	Detection      detection.Detection `json:"detection"`
	FirstSeenFrame int                 `json:"first_seen_frame"`
	LastSeenFrame  int                 `json:"last_seen_frame"`
	Smoothed       detection.Point     `json:"smoothed"`
}

// Center returns the raw centroid of the latest matched detection.
func (o TrackedObject) Center() detection.Point {
	return o.Detection.Center()
}

type track struct {
	obj    TrackedObject
	filter *kalman_filter.Kalman2D
}

// Tracker holds the live objects. It is not safe for concurrent use; callers
// drive it from a single frame loop and hand out the returned copies.
type Tracker struct {
	cfg     Config
	objects map[int]*track
	order   []int // live ids in insertion order
	nextID  int
	logger  *slog.Logger
}

// New creates a Tracker from DefaultConfig with options applied.
func New(opts ...Option) *Tracker {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Tracker from an explicit config.
func NewWithConfig(cfg Config) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SmoothingStep <= 0 {
		cfg.SmoothingStep = 1.0
	}
	return &Tracker{
		cfg:     cfg,
		objects: make(map[int]*track),
		nextID:  1,
		logger:  logger.With("component", "tracking"),
	}
}

// Config returns the tracker configuration.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Update matches detections against live objects for frame currentFrame and
// returns the objects matched or created by this call, ordered by id.
// Detections with non-finite coordinates are ignored.
func (t *Tracker) Update(dets []detection.Detection, currentFrame int) []TrackedObject {
	usable := make([]detection.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Box.Finite() {
			usable = append(usable, d)
		}
	}

	live := make([]*track, 0, len(t.order))
	for _, id := range t.order {
		live = append(live, t.objects[id])
	}

	if t.cfg.Smoothing {
		for _, tr := range live {
			tr.filter.Predict()
		}
	}

	var pairs map[int]int
	switch t.cfg.Matcher {
	case MatchHungarian:
		pairs = matchHungarian(live, usable, t.cfg.MaxDistance)
	default:
		pairs = matchGreedy(live, usable, t.cfg.MaxDistance)
	}

	claimed := make([]bool, len(usable))
	result := make([]TrackedObject, 0, len(usable))

	for oi, tr := range live {
		di, ok := pairs[oi]
		if !ok {
			continue
		}
		claimed[di] = true
		tr.obj.Detection = usable[di]
		tr.obj.LastSeenFrame = currentFrame
		t.smooth(tr)
		result = append(result, tr.obj)
	}

	for di, d := range usable {
		if claimed[di] {
			continue
		}
		tr := t.register(d, currentFrame)
		result = append(result, tr.obj)
	}

	t.evict(currentFrame)

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Objects returns copies of all live objects ordered by id.
func (t *Tracker) Objects() []TrackedObject {
	out := make([]TrackedObject, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.objects[id].obj)
	}
	return out
}

// Get returns a copy of the live object with the given id.
func (t *Tracker) Get(id int) (TrackedObject, bool) {
	tr, ok := t.objects[id]
	if !ok {
		return TrackedObject{}, false
	}
	return tr.obj, true
}

// Len returns the number of live objects.
func (t *Tracker) Len() int {
	return len(t.order)
}

// Reset drops every live object. Ids keep counting from where they were.
func (t *Tracker) Reset() {
	t.objects = make(map[int]*track)
	t.order = t.order[:0]
}

func (t *Tracker) register(d detection.Detection, frame int) *track {
	c := d.Center()
	tr := &track{
		obj: TrackedObject{
			ID:             t.nextID,
			Detection:      d,
			FirstSeenFrame: frame,
			LastSeenFrame:  frame,
			Smoothed:       c,
		},
	}
	if t.cfg.Smoothing {
		tr.filter = kalman_filter.NewKalman2D(t.cfg.SmoothingStep, 1.0, 1.0, 2.0, 0.1, 0.1, kalman_filter.WithState2D(c.X, c.Y))
	}
	t.nextID++
	t.objects[tr.obj.ID] = tr
	t.order = append(t.order, tr.obj.ID)
	t.logger.Debug("object registered", "id", tr.obj.ID, "label", d.Label, "frame", frame)
	return tr
}

func (t *Tracker) smooth(tr *track) {
	c := tr.obj.Center()
	if tr.filter == nil {
		tr.obj.Smoothed = c
		return
	}
	if err := tr.filter.Update(c.X, c.Y); err != nil {
		t.logger.Warn("centroid filter", "error", errors.Wrapf(err, "can't update filter of object %d", tr.obj.ID))
		tr.obj.Smoothed = c
		return
	}
	x, y := tr.filter.GetState()
	tr.obj.Smoothed = detection.Point{X: x, Y: y}
}

func (t *Tracker) evict(currentFrame int) {
	kept := t.order[:0]
	for _, id := range t.order {
		tr := t.objects[id]
		if currentFrame-tr.obj.LastSeenFrame > t.cfg.MaxLostFrames {
			delete(t.objects, id)
			t.logger.Debug("object evicted", "id", id, "label", tr.obj.Detection.Label, "last_seen", tr.obj.LastSeenFrame)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
}
