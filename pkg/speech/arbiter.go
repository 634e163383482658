package speech

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Arbiter is a single-channel speech gate: Idle, Speaking, or Speaking with
// one pending request. Safe for concurrent use.
type Arbiter struct {
	sink Sink
	options

	mu         sync.Mutex
	inflight   *Utterance
	pending    *pendingRequest
	lastSpoken string
	closed     bool
}

type pendingRequest struct {
	id  uuid.UUID
	req Request
}

// NewArbiter creates an idle Arbiter speaking through sink.
func NewArbiter(sink Sink, opts ...Option) *Arbiter {
	return &Arbiter{
		sink:    sink,
		options: newOptions("speech.arbiter", opts),
	}
}

// Speak submits a normal-priority request.
func (a *Arbiter) Speak(text string) Ticket {
	return a.Submit(Request{Text: text})
}

// SpeakNow submits a flush request: spoken at once when idle, otherwise it
// replaces whatever is waiting.
func (a *Arbiter) SpeakNow(text string) Ticket {
	return a.Submit(Request{Text: text, Priority: Flush})
}

// Submit applies the arbitration rules to req.
func (a *Arbiter) Submit(req Request) Ticket {
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = a.now()
	}
	t := Ticket{ID: uuid.New(), Text: req.Text}

	var start *Utterance
	var displaced *pendingRequest

	a.mu.Lock()
	switch {
	case a.closed:
		t.Outcome = Closed
	case strings.TrimSpace(req.Text) == "":
		t.Outcome = Dropped
	case !req.Repeat && req.Text == a.lastSpoken:
		t.Outcome = Dropped
	case a.pending != nil && a.pending.req.Text == req.Text:
		t.Outcome = Dropped
	case a.inflight == nil:
		start = &Utterance{ID: t.ID, Text: req.Text, Flush: req.Priority == Flush}
		a.inflight = start
		a.lastSpoken = req.Text
		t.Outcome = Started
	case req.Priority == Normal && a.pending != nil && a.pending.req.Priority == Flush:
		t.Outcome = Dropped
	default:
		displaced = a.pending
		a.pending = &pendingRequest{id: t.ID, req: req}
		t.Outcome = Pending
	}
	a.mu.Unlock()

	if displaced != nil {
		a.logger.Debug("pending request replaced", "old", displaced.req.Text, "new", req.Text)
		a.emit(Event{Type: EventDropped, ID: displaced.id, Text: displaced.req.Text})
	}
	if t.Outcome == Dropped {
		a.emit(Event{Type: EventDropped, ID: t.ID, Text: t.Text})
	}
	if start != nil {
		a.start(*start)
	}
	return t
}

// Busy reports whether an utterance is in flight.
func (a *Arbiter) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inflight != nil
}

// LastSpoken returns the most recently started phrase.
func (a *Arbiter) LastSpoken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSpoken
}

// PendingText returns the waiting phrase, if any.
func (a *Arbiter) PendingText() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil {
		return "", false
	}
	return a.pending.req.Text, true
}

// Close drops the pending request and rejects new ones. The in-flight
// utterance is allowed to finish.
func (a *Arbiter) Close() {
	a.mu.Lock()
	a.closed = true
	a.pending = nil
	a.mu.Unlock()
}

func (a *Arbiter) start(u Utterance) {
	a.emit(Event{Type: EventStarted, ID: u.ID, Text: u.Text})
	if err := a.sink.Speak(u, func(err error) { a.finish(u.ID, err) }); err != nil {
		a.finish(u.ID, err)
	}
}

// finish clears the in-flight utterance and starts the pending one. Calls
// for an utterance that is no longer in flight are ignored.
func (a *Arbiter) finish(id uuid.UUID, err error) {
	a.mu.Lock()
	if a.inflight == nil || a.inflight.ID != id {
		a.mu.Unlock()
		return
	}
	text := a.inflight.Text
	a.inflight = nil

	var next *Utterance
	if a.pending != nil && !a.closed {
		p := a.pending
		a.pending = nil
		next = &Utterance{ID: p.id, Text: p.req.Text, Flush: p.req.Priority == Flush}
		a.inflight = next
		a.lastSpoken = next.Text
	}
	a.mu.Unlock()

	if err != nil {
		a.logger.Warn("utterance failed", "text", text, "error", err)
		a.emit(Event{Type: EventFailed, ID: id, Text: text, Error: err.Error()})
	} else {
		a.emit(Event{Type: EventFinished, ID: id, Text: text})
	}

	if next != nil {
		a.start(*next)
	}
}

var _ Speaker = (*Arbiter)(nil)
