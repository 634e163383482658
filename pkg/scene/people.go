package scene

import (
	"strconv"
	"strings"
	"time"
)

// PeopleLabel is the detector label counted by PeopleSummary.
const PeopleLabel = "person"

// NoPeople is shown when no person is visible.
const NoPeople = "No face detected."

// PeopleSummary announces how many people are in view. A message is spoken
// again only after it changes or RepeatAfter has passed, and never while the
// speaker is busy.
type PeopleSummary struct {
	RepeatAfter time.Duration
	Now         func() time.Time

	lastMessage string
	lastSpoken  time.Time
}

// NewPeopleSummary returns a summary with the 1.2 s repeat window.
func NewPeopleSummary() *PeopleSummary {
	return &PeopleSummary{
		RepeatAfter: 1200 * time.Millisecond,
		Now:         time.Now,
	}
}

// PeopleMessage returns "person detected" or "N people detected".
func PeopleMessage(n int) string {
	if n == 1 {
		return "person detected"
	}
	return strconv.Itoa(n) + " people detected"
}

// Display capitalizes a message for on-screen text.
func Display(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// Observe records a people count. It returns the text to show and, when
// speak is true, the message to say.
func (p *PeopleSummary) Observe(count int, busy bool) (display string, say string, speak bool) {
	if count <= 0 {
		p.lastMessage = ""
		return NoPeople, "", false
	}

	msg := PeopleMessage(count)
	now := p.Now()
	if !busy && (msg != p.lastMessage || now.Sub(p.lastSpoken) > p.RepeatAfter) {
		p.lastMessage = msg
		p.lastSpoken = now
		return Display(msg), msg, true
	}
	return Display(msg), "", false
}
