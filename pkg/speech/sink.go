package speech

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-visnav/pkg/tts"
)

// LogSink logs each utterance and reports completion after the time it would
// take to say it. Useful headless and as a fallback when no voice is set up.
type LogSink struct {
	Speed  float64
	logger *slog.Logger
}

// NewLogSink creates a LogSink at the given speaking rate.
func NewLogSink(speed float64, logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Speed: speed, logger: logger.With("component", "speech.log")}
}

// Speak implements Sink.
func (s *LogSink) Speak(u Utterance, done func(error)) error {
	d := tts.EstimateDuration(u.Text, s.Speed)
	s.logger.Info("say", "text", u.Text, "flush", u.Flush, "duration", d)
	time.AfterFunc(d, func() { done(nil) })
	return nil
}

// AudioOutput plays or forwards synthesized audio. It may return before
// playback ends; ProviderSink waits out the audio duration itself.
type AudioOutput func(u Utterance, audio *tts.AudioResult) error

// ProviderSink synthesizes utterances with a tts.Provider on a background
// goroutine, hands the audio to an output and completes once the audio's
// duration has elapsed.
type ProviderSink struct {
	provider tts.Provider
	output   AudioOutput
	timeout  time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProviderSink creates a sink. output may be nil.
func NewProviderSink(provider tts.Provider, output AudioOutput, logger *slog.Logger) *ProviderSink {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ProviderSink{
		provider: provider,
		output:   output,
		timeout:  20 * time.Second,
		logger:   logger.With("component", "speech.provider"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Speak implements Sink.
func (s *ProviderSink) Speak(u Utterance, done func(error)) error {
	if s.ctx.Err() != nil {
		return ErrClosed
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		done(s.say(u))
	}()
	return nil
}

func (s *ProviderSink) say(u Utterance) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	result, err := s.provider.Synthesize(ctx, u.Text)
	if err != nil {
		return err
	}
	if s.output != nil {
		if err := s.output(u, result); err != nil {
			return err
		}
	}
	s.logger.Debug("playing", "text", u.Text, "duration", result.Duration, "latency_ms", result.LatencyMs)

	timer := time.NewTimer(result.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-s.ctx.Done():
		return ErrClosed
	}
}

// Close aborts playback waits and waits for background work to end.
func (s *ProviderSink) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = (*ProviderSink)(nil)
)
