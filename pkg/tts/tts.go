// Package tts turns guidance and announcement text into audio.
//
// Providers implement a single Synthesize call. Chain tries several in order;
// ending it with Silent keeps speech paced when the cloud voice is down.
//
//	provider, _ := tts.NewOpenAI(
//	    tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    tts.WithSpeed(tts.DefaultSpeed),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Go straight. The cup is very close.")
package tts

import (
	"context"
	"time"
	"unicode/utf8"
)

// DefaultSpeed is the speaking rate used for guidance, slightly slower than normal.
const DefaultSpeed = 0.85

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	Audio     []byte
	Format    AudioFormat
	Duration  time.Duration // Estimated playback duration
	CharCount int
	LatencyMs int64
}

// AudioFormat describes the audio encoding parameters.
type AudioFormat struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
	BitDepth   int
}

// Encoding represents audio encoding types.
type Encoding string

const (
	EncodingPCM24 Encoding = "pcm_24000"     // 24kHz mono PCM16
	EncodingMP3   Encoding = "mp3_44100_128" // MP3 128kbps
	EncodingWAV   Encoding = "wav"
)

// charsPerSecond is a typical English speaking rate at speed 1.0.
const charsPerSecond = 15.0

// EstimateDuration approximates how long text takes to say at speed.
func EstimateDuration(text string, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	secs := float64(n) / (charsPerSecond * speed)
	return time.Duration(secs * float64(time.Second))
}
