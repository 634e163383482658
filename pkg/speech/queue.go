package speech

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Queue speaks every request in submission order, one at a time. Flush
// requests jump to the head of the waiting line but nothing is discarded.
type Queue struct {
	sink Sink
	options

	mu       sync.Mutex
	waiting  []Utterance
	inflight *Utterance
	closed   bool
}

// NewQueue creates an empty Queue speaking through sink.
func NewQueue(sink Sink, opts ...Option) *Queue {
	return &Queue{
		sink:    sink,
		options: newOptions("speech.queue", opts),
	}
}

// Speak appends text to the queue.
func (q *Queue) Speak(text string) Ticket {
	return q.Submit(Request{Text: text})
}

// Submit enqueues req.
func (q *Queue) Submit(req Request) Ticket {
	t := Ticket{ID: uuid.New(), Text: req.Text}
	u := Utterance{ID: t.ID, Text: req.Text, Flush: req.Priority == Flush}

	var start bool
	q.mu.Lock()
	switch {
	case q.closed:
		t.Outcome = Closed
	case strings.TrimSpace(req.Text) == "":
		t.Outcome = Dropped
	case q.inflight == nil:
		q.inflight = &u
		start = true
		t.Outcome = Started
	case req.Priority == Flush:
		q.waiting = append([]Utterance{u}, q.waiting...)
		t.Outcome = Queued
	default:
		q.waiting = append(q.waiting, u)
		t.Outcome = Queued
	}
	q.mu.Unlock()

	if start {
		q.start(u)
	}
	return t
}

// Busy reports whether an utterance is in flight.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inflight != nil
}

// Len returns the number of requests waiting behind the in-flight one.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// Close discards waiting requests and rejects new ones.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.waiting = nil
	q.mu.Unlock()
}

func (q *Queue) start(u Utterance) {
	q.emit(Event{Type: EventStarted, ID: u.ID, Text: u.Text})
	if err := q.sink.Speak(u, func(err error) { q.finish(u.ID, err) }); err != nil {
		q.finish(u.ID, err)
	}
}

func (q *Queue) finish(id uuid.UUID, err error) {
	q.mu.Lock()
	if q.inflight == nil || q.inflight.ID != id {
		q.mu.Unlock()
		return
	}
	text := q.inflight.Text
	q.inflight = nil

	var next *Utterance
	if len(q.waiting) > 0 && !q.closed {
		u := q.waiting[0]
		q.waiting = q.waiting[1:]
		next = &u
		q.inflight = next
	}
	q.mu.Unlock()

	if err != nil {
		q.logger.Warn("utterance failed", "text", text, "error", err)
		q.emit(Event{Type: EventFailed, ID: id, Text: text, Error: err.Error()})
	} else {
		q.emit(Event{Type: EventFinished, ID: id, Text: text})
	}

	if next != nil {
		q.start(*next)
	}
}

var _ Speaker = (*Queue)(nil)
