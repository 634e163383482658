package haptics

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/teslashibe/go-visnav/pkg/hub"
)

type published struct {
	kind string
	data any
}

type capturePublisher struct {
	sent []published
	err  error
}

func (c *capturePublisher) Publish(kind string, data any) error {
	c.sent = append(c.sent, published{kind, data})
	return c.err
}

func TestRemotePublishesHapticEvent(t *testing.T) {
	out := &capturePublisher{}
	NewRemote(out, nil).Vibrate(ReachedPulse)

	if len(out.sent) != 1 {
		t.Fatalf("expected 1 event, got %d", len(out.sent))
	}
	if out.sent[0].kind != hub.EventHaptic {
		t.Errorf("kind: got %q, want %q", out.sent[0].kind, hub.EventHaptic)
	}
	p, ok := out.sent[0].data.(Pulse)
	if !ok {
		t.Fatalf("expected Pulse, got %T", out.sent[0].data)
	}
	if p.DurationMs != 300 {
		t.Errorf("unexpected pulse: %+v", p)
	}
}

func TestPulseEventWireForm(t *testing.T) {
	out := &capturePublisher{}
	NewRemote(out, nil).Vibrate(MissingPulse)

	msg, err := hub.NewEvent(out.sent[0].kind, out.sent[0].data).Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var ev struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ev.Type != "haptic" || ev.Data["duration_ms"] != float64(150) || len(ev.Data) != 1 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestRemoteSurvivesPublishError(t *testing.T) {
	out := &capturePublisher{err: errors.New("hub full")}
	NewRemote(out, nil).Vibrate(MissingPulse)
	if len(out.sent) != 1 {
		t.Errorf("expected publish attempt, got %d", len(out.sent))
	}
}

func TestMultiAndRecorder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}

	Multi{a, b, Nop{}, NewLogger(nil)}.Vibrate(MissingPulse)

	for i, r := range []*Recorder{a, b} {
		got := r.Pulses()
		if len(got) != 1 || got[0] != MissingPulse {
			t.Errorf("recorder %d: got %v", i, got)
		}
	}
}
