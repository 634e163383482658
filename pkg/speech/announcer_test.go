package speech

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }
func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestAnnouncer() (*Announcer, *RecordingSink, *stepClock) {
	sink := NewRecordingSink()
	sink.AutoComplete = true
	clock := &stepClock{t: time.Unix(0, 0)}
	a := NewAnnouncer(DefaultAnnouncerConfig(), NewQueue(sink))
	a.SetClock(clock.now)
	return a, sink, clock
}

func TestAnnouncerJoinsNewLabels(t *testing.T) {
	t.Parallel()

	a, sink, _ := newTestAnnouncer()

	ticket, ok := a.Announce([]string{"cup", "pen", "cup"})
	require.True(t, ok)
	assert.Equal(t, "cup, pen", ticket.Text)
	assert.Equal(t, []string{"cup, pen"}, sink.Texts())
}

func TestAnnouncerCooldown(t *testing.T) {
	t.Parallel()

	a, sink, clock := newTestAnnouncer()

	a.Announce([]string{"cup"})

	clock.advance(1 * time.Second)
	_, ok := a.Announce([]string{"cup"})
	assert.False(t, ok)

	clock.advance(2 * time.Second) // exactly 3s: still cooling down
	_, ok = a.Announce([]string{"cup"})
	assert.False(t, ok)

	clock.advance(time.Millisecond)
	_, ok = a.Announce([]string{"cup"})
	assert.True(t, ok)

	assert.Equal(t, []string{"cup", "cup"}, sink.Texts())
}

func TestAnnouncerOnlyDueLabels(t *testing.T) {
	t.Parallel()

	a, sink, clock := newTestAnnouncer()

	a.Announce([]string{"cup"})
	clock.advance(500 * time.Millisecond)
	a.Announce([]string{"cup", "laptop"})

	assert.Equal(t, []string{"cup", "laptop"}, sink.Texts())
}

func TestAnnouncerForget(t *testing.T) {
	t.Parallel()

	a, sink, _ := newTestAnnouncer()

	a.Announce([]string{"cup"})
	a.Forget()
	a.Announce([]string{"cup"})

	assert.Equal(t, []string{"cup", "cup"}, sink.Texts())
}

func TestAnnouncerNothingVisible(t *testing.T) {
	t.Parallel()

	a, sink, _ := newTestAnnouncer()
	_, ok := a.Announce(nil)
	assert.False(t, ok)
	assert.Empty(t, sink.Texts())
}
