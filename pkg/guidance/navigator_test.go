package guidance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-visnav/pkg/detection"
	"github.com/teslashibe/go-visnav/pkg/haptics"
	"github.com/teslashibe/go-visnav/pkg/speech"
)

const frameW, frameH = 640, 480

type harness struct {
	nav  *Navigator
	sink *speech.RecordingSink
	vib  *haptics.Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sink := speech.NewRecordingSink()
	sink.AutoComplete = true
	vib := &haptics.Recorder{}
	nav := NewNavigator(DefaultConfig(), speech.NewArbiter(sink), vib)
	return &harness{nav: nav, sink: sink, vib: vib}
}

func frameWith(index int, dets ...detection.Detection) detection.Frame {
	return detection.Frame{Index: index, Width: frameW, Height: frameH, Detections: dets}
}

func det(label string, b detection.BoundingBox) detection.Detection {
	return detection.Detection{Label: label, Score: 0.8, Box: b}
}

// smallCup is centered and covers ~1% of the frame.
var smallCup = det("cup", box(320, 240, 60, 50))

func TestNavigatorNoTarget(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	res := h.nav.Update(frameWith(1, smallCup))
	assert.Equal(t, NoTarget, res.State)
	assert.Empty(t, h.sink.Texts())
	assert.Equal(t, "", h.nav.Status().Display)
}

func TestNavigatorSpeaksGuidance(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")
	assert.Equal(t, TargetMissingUnwarned, h.nav.Status().State)

	res := h.nav.Update(frameWith(1, det("chair", box(100, 100, 50, 50)), smallCup))
	require.True(t, res.Found)
	assert.Equal(t, TargetVisible, res.State)
	assert.Equal(t, "Go straight. The cup is ahead, keep moving.", res.Phrase)
	assert.Equal(t, []string{"Go straight. The cup is ahead, keep moving."}, h.sink.Texts())
	require.Len(t, res.Tickets, 1)
	assert.Equal(t, speech.Started, res.Tickets[0].Outcome)
	assert.Equal(t, "Target: cup", h.nav.Status().Display)
}

func TestNavigatorMatchesLabelIgnoringCase(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")
	res := h.nav.Update(frameWith(1, det("Cup", box(600, 240, 60, 50))))
	require.True(t, res.Found)
	assert.Equal(t, Right, res.Direction)
}

func TestNavigatorRepeatInterval(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")

	spokenOn := []int{}
	for i := 1; i <= 64; i++ {
		res := h.nav.Update(frameWith(i, smallCup))
		if len(res.Tickets) > 0 {
			spokenOn = append(spokenOn, i)
			assert.Equal(t, speech.Started, res.Tickets[0].Outcome, "frame %d", i)
		}
	}

	// Visible-frame counter: spoken at 0, then again once the counter is
	// more than 30 past the last spoken index.
	assert.Equal(t, []int{1, 32, 63}, spokenOn)
	assert.Len(t, h.sink.Texts(), 3)
}

func TestNavigatorChangedPhraseSpeaksImmediately(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")

	h.nav.Update(frameWith(1, smallCup))
	h.nav.Update(frameWith(2, det("cup", box(100, 240, 60, 50))))
	h.nav.Update(frameWith(3, det("cup", box(100, 240, 60, 50))))

	assert.Equal(t, []string{
		"Go straight. The cup is ahead, keep moving.",
		"Move left towards the cup. The cup is ahead, keep moving.",
	}, h.sink.Texts())
}

func TestNavigatorReachedPulses(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")

	big := det("cup", box(320, 240, 500, 400)) // 0.65 of the frame
	h.nav.Update(frameWith(1, big))
	h.nav.Update(frameWith(2, big))

	assert.Equal(t, []string{"Go straight. You have reached the cup."}, h.sink.Texts())
	assert.Equal(t, []int64{300, 300}, millis(h.vib))
}

func TestNavigatorMissingWarnsOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")

	others := []detection.Detection{
		det("Chair", box(100, 100, 40, 40)),
		det("chair", box(200, 100, 40, 40)),
		det("bottle", box(300, 100, 20, 60)),
	}

	for i := 1; i < 15; i++ {
		res := h.nav.Update(frameWith(i, others...))
		assert.False(t, res.Warned, "frame %d", i)
		assert.Equal(t, TargetMissingUnwarned, res.State)
	}
	assert.Empty(t, h.sink.Texts())

	res := h.nav.Update(frameWith(15, others...))
	assert.True(t, res.Warned)
	assert.Equal(t, TargetMissingWarned, res.State)
	assert.Equal(t, []string{
		"Cannot see the cup, please move your device.",
		"There's two chairs and a bottle in front of you.",
	}, h.sink.Texts())
	assert.True(t, h.sink.Utterances()[0].Flush)
	assert.Equal(t, []int64{150}, millis(h.vib))

	st := h.nav.Status()
	assert.True(t, st.Missing)
	assert.Equal(t, "Looking for cup...", st.Display)

	for i := 16; i < 40; i++ {
		assert.False(t, h.nav.Update(frameWith(i)).Warned)
	}
	assert.Len(t, h.sink.Texts(), 2)
}

func TestNavigatorMissingWithEmptySceneSpeaksOnlyWarning(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")
	for i := 1; i <= 15; i++ {
		h.nav.Update(frameWith(i))
	}
	assert.Equal(t, []string{"Cannot see the cup, please move your device."}, h.sink.Texts())
}

func TestNavigatorWarnsAgainAfterReacquire(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")

	for i := 1; i <= 15; i++ {
		h.nav.Update(frameWith(i))
	}
	res := h.nav.Update(frameWith(16, smallCup))
	assert.Equal(t, TargetVisible, res.State)
	assert.False(t, h.nav.Status().Missing)

	warnings := 0
	for i := 17; i <= 31; i++ {
		if h.nav.Update(frameWith(i)).Warned {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestNavigatorDegenerateGeometryIsAMiss(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame detection.Frame
	}{
		{"zero area box", frameWith(1, det("cup", detection.BoundingBox{Left: 10, Top: 10, Right: 10, Bottom: 50}))},
		{"outside frame", frameWith(1, det("cup", box(2000, 240, 60, 50)))},
		{"zero frame size", detection.Frame{Index: 1, Detections: []detection.Detection{smallCup}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.nav.SetTarget("cup")
			res := h.nav.Update(tt.frame)
			assert.False(t, res.Found)
			assert.Equal(t, 1, h.nav.Status().MissingCount)
			assert.Empty(t, h.sink.Texts())
		})
	}
}

func TestNavigatorClampsOverhangingBox(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")
	res := h.nav.Update(frameWith(1, det("cup", detection.BoundingBox{Left: 600, Top: 200, Right: 800, Bottom: 300})))
	require.True(t, res.Found)
	assert.Equal(t, float64(frameW), res.Target.Box.Right)
	assert.Equal(t, Right, res.Direction)
}

func TestNavigatorCancelAndRetarget(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.nav.SetTarget("cup")
	for i := 1; i <= 10; i++ {
		h.nav.Update(frameWith(i))
	}
	assert.Equal(t, 10, h.nav.Status().MissingCount)

	h.nav.Cancel()
	assert.Equal(t, NoTarget, h.nav.Status().State)
	assert.Equal(t, NoTarget, h.nav.Update(frameWith(11)).State)

	h.nav.SetTarget("laptop")
	st := h.nav.Status()
	assert.Equal(t, "laptop", st.Target)
	assert.Equal(t, 0, st.MissingCount)
	assert.Equal(t, TargetMissingUnwarned, st.State)

	h.nav.SetTarget("  ")
	assert.Equal(t, NoTarget, h.nav.Status().State)
}

func millis(r *haptics.Recorder) []int64 {
	var out []int64
	for _, d := range r.Pulses() {
		out = append(out, d.Milliseconds())
	}
	return out
}
