// Package speech serializes spoken feedback.
//
// Text-to-speech engines speak one utterance at a time and report completion
// asynchronously. Arbiter keeps at most one request waiting behind the
// current utterance (newest wins) and suppresses immediate repeats; Queue
// delivers every request in order. Both hand utterances to a Sink and advance
// when the Sink reports completion, whether it succeeded or not.
package speech

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned by sinks and reported in tickets after Close.
var ErrClosed = errors.New("speech: closed")

// Priority controls how a request interacts with one already waiting.
type Priority int

const (
	// Normal requests wait behind the current utterance but never displace a
	// waiting Flush request.
	Normal Priority = iota
	// Flush requests always take the waiting slot.
	Flush
)

// String returns the priority name.
func (p Priority) String() string {
	if p == Flush {
		return "flush"
	}
	return "normal"
}

// Request is one phrase to speak.
type Request struct {
	Text     string
	Priority Priority
	// Repeat marks a deliberate repetition that must not be deduplicated
	// against the last spoken phrase.
	Repeat      bool
	SubmittedAt time.Time
}

// Outcome says what happened to a submitted request.
type Outcome int

const (
	Started Outcome = iota // handed to the sink immediately
	Pending                // waiting behind the current utterance
	Queued                 // appended to a FIFO queue
	Dropped                // duplicate, empty, or displaced
	Closed                 // submitted after Close
)

var outcomeNames = [...]string{"started", "pending", "queued", "dropped", "closed"}

// String returns the outcome name.
func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(b []byte) error {
	for i, name := range outcomeNames {
		if name == string(b) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("speech: unknown outcome %q", b)
}

// Ticket identifies a submitted request.
type Ticket struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Outcome Outcome   `json:"outcome"`
}

// Accepted reports whether the request will be (or is being) spoken.
func (t Ticket) Accepted() bool {
	return t.Outcome == Started || t.Outcome == Pending || t.Outcome == Queued
}

// Utterance is what a Sink is asked to say.
type Utterance struct {
	ID    uuid.UUID
	Text  string
	Flush bool
}

// Sink speaks utterances. Speak must not block for the duration of the
// utterance: it starts playback and later calls done exactly once, from any
// goroutine. An error returned from Speak means done will not be called.
type Sink interface {
	Speak(u Utterance, done func(error)) error
}

// Speaker accepts speech requests.
type Speaker interface {
	Submit(req Request) Ticket
	Busy() bool
}

// EventType classifies speech lifecycle events.
type EventType string

const (
	EventStarted  EventType = "started"
	EventFinished EventType = "finished"
	EventFailed   EventType = "failed"
	EventDropped  EventType = "dropped"
)

// Event is reported to observers as utterances progress.
type Event struct {
	Type  EventType `json:"type"`
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Error string    `json:"error,omitempty"`
}

// Observer receives lifecycle events. It is called without internal locks
// held and must not block.
type Observer func(Event)
