package speech

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-visnav/pkg/tts"
)

func TestLogSinkCompletes(t *testing.T) {
	t.Parallel()

	a := NewArbiter(NewLogSink(50, nil))
	a.Speak("ok")
	assert.True(t, a.Busy())
	require.Eventually(t, func() bool { return !a.Busy() }, time.Second, time.Millisecond)
}

func TestProviderSink(t *testing.T) {
	t.Parallel()

	provider := tts.NewMock()
	var played atomic.Int32
	sink := NewProviderSink(provider, func(u Utterance, audio *tts.AudioResult) error {
		played.Add(1)
		return nil
	}, nil)
	defer sink.Close()

	a := NewArbiter(sink)
	a.Speak("hi")

	require.Eventually(t, func() bool { return !a.Busy() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), played.Load())
	assert.Equal(t, []string{"hi"}, provider.Texts())
}

func TestProviderSinkFailureCompletes(t *testing.T) {
	t.Parallel()

	sink := NewProviderSink(tts.WithError(errors.New("offline")), nil, nil)
	defer sink.Close()

	var failed atomic.Bool
	a := NewArbiter(sink, WithObserver(func(e Event) {
		if e.Type == EventFailed {
			failed.Store(true)
		}
	}))
	a.Speak("hi")

	require.Eventually(t, func() bool { return !a.Busy() }, time.Second, time.Millisecond)
	assert.True(t, failed.Load())
}

func TestProviderSinkClosed(t *testing.T) {
	t.Parallel()

	sink := NewProviderSink(tts.NewMock(), nil, nil)
	require.NoError(t, sink.Close())

	err := sink.Speak(Utterance{Text: "hi"}, func(error) {})
	assert.ErrorIs(t, err, ErrClosed)
}
