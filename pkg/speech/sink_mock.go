package speech

import (
	"sync"
)

// RecordingSink records utterances and completes them only when told to.
// It lets tests step through the speaking lifecycle deterministically.
type RecordingSink struct {
	// AutoComplete finishes every utterance synchronously inside Speak.
	AutoComplete bool
	// SpeakErr, when set, is returned from Speak.
	SpeakErr error

	mu     sync.Mutex
	spoken []Utterance
	open   []func(error)
}

// NewRecordingSink creates a sink that holds utterances open.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Speak implements Sink.
func (s *RecordingSink) Speak(u Utterance, done func(error)) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, u)
	if s.SpeakErr != nil {
		err := s.SpeakErr
		s.mu.Unlock()
		return err
	}
	if s.AutoComplete {
		s.mu.Unlock()
		done(nil)
		return nil
	}
	s.open = append(s.open, done)
	s.mu.Unlock()
	return nil
}

// Complete finishes the oldest open utterance. It reports false if none is open.
func (s *RecordingSink) Complete() bool {
	return s.resolve(nil)
}

// Fail finishes the oldest open utterance with err.
func (s *RecordingSink) Fail(err error) bool {
	return s.resolve(err)
}

func (s *RecordingSink) resolve(err error) bool {
	s.mu.Lock()
	if len(s.open) == 0 {
		s.mu.Unlock()
		return false
	}
	done := s.open[0]
	s.open = s.open[1:]
	s.mu.Unlock()

	done(err)
	return true
}

// Texts returns every text handed to Speak, in order.
func (s *RecordingSink) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	for i, u := range s.spoken {
		out[i] = u.Text
	}
	return out
}

// Utterances returns every utterance handed to Speak, in order.
func (s *RecordingSink) Utterances() []Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Utterance, len(s.spoken))
	copy(out, s.spoken)
	return out
}

// Open returns the number of utterances not yet completed.
func (s *RecordingSink) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

var _ Sink = (*RecordingSink)(nil)
