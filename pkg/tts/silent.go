package tts

import (
	"context"
	"strings"
)

// Silent produces no audio, only a duration estimate. As the last link of a
// Chain it turns a voice outage into timed pauses so speech pacing holds.
type Silent struct {
	speed float64
}

// NewSilent creates a Silent provider that paces text at speed.
func NewSilent(speed float64) *Silent {
	return &Silent{speed: speed}
}

// Synthesize implements Provider.
func (s *Silent) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	return &AudioResult{
		Duration:  EstimateDuration(text, s.speed),
		CharCount: len(text),
	}, nil
}

// Health implements Provider.
func (s *Silent) Health(context.Context) error { return nil }

// Close implements Provider.
func (s *Silent) Close() error { return nil }

var _ Provider = (*Silent)(nil)
