package guidance

import (
	"testing"

	"github.com/teslashibe/go-visnav/pkg/detection"
)

func TestPhrase(t *testing.T) {
	tests := []struct {
		dir  Direction
		dist Distance
		want string
	}{
		{Left, Reached, "Move left towards the cup. You have reached the cup."},
		{Left, VeryClose, "Move left towards the cup. The cup is very close."},
		{Left, FewSteps, "Move left towards the cup. The cup is ahead, a few steps away."},
		{Left, KeepMoving, "Move left towards the cup. The cup is ahead, keep moving."},
		{Center, Reached, "Go straight. You have reached the cup."},
		{Center, VeryClose, "Go straight. The cup is very close."},
		{Center, FewSteps, "Go straight. The cup is ahead, a few steps away."},
		{Center, KeepMoving, "Go straight. The cup is ahead, keep moving."},
		{Right, Reached, "Move right towards the cup. You have reached the cup."},
		{Right, VeryClose, "Move right towards the cup. The cup is very close."},
		{Right, FewSteps, "Move right towards the cup. The cup is ahead, a few steps away."},
		{Right, KeepMoving, "Move right towards the cup. The cup is ahead, keep moving."},
	}

	seen := make(map[[2]int]bool)
	for _, tt := range tests {
		seen[[2]int{int(tt.dir), int(tt.dist)}] = true
		t.Run(tt.dir.String()+"/"+tt.dist.String(), func(t *testing.T) {
			if got := Phrase(tt.dir, tt.dist, "cup"); got != tt.want {
				t.Errorf("Phrase: got %q, want %q", got, tt.want)
			}
		})
	}
	if len(seen) != 12 {
		t.Errorf("expected all 12 direction/distance pairs, got %d", len(seen))
	}
}

func TestMissingWarning(t *testing.T) {
	want := "Cannot see the laptop, please move your device."
	if got := MissingWarning("laptop"); got != want {
		t.Errorf("MissingWarning: got %q, want %q", got, want)
	}
}

// box returns a w x h box centered at (cx, cy).
func box(cx, cy, w, h float64) detection.BoundingBox {
	return detection.BoundingBox{Left: cx - w/2, Top: cy - h/2, Right: cx + w/2, Bottom: cy + h/2}
}

func TestClassifyDirection(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		cx   float64
		want Direction
	}{
		{"centered", 500, Center},
		{"right edge of dead zone", 650, Center},
		{"right", 660, Right},
		{"left edge of dead zone", 350, Center},
		{"left", 340, Left},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Classify(box(tt.cx, 500, 10, 10), 1000, 1000, cfg)
			if got != tt.want {
				t.Errorf("direction: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyDistance(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		w, h float64
		want Distance
	}{
		{"reached", 600, 600, Reached},                    // 0.36
		{"exactly reached ratio", 500, 700, VeryClose},    // 0.35
		{"very close", 400, 400, VeryClose},               // 0.16
		{"few steps", 300, 300, FewSteps},                 // 0.09
		{"exactly few steps ratio", 100, 700, KeepMoving}, // 0.07
		{"far", 100, 100, KeepMoving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Classify(box(500, 500, tt.w, tt.h), 1000, 1000, cfg)
			if got != tt.want {
				t.Errorf("distance: got %v, want %v", got, tt.want)
			}
		})
	}
}
