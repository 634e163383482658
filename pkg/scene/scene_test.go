package scene

import (
	"testing"
	"time"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		ctx    Context
		want   string
	}{
		{
			name:   "single item",
			counts: map[string]int{"chair": 1},
			ctx:    Environment,
			want:   "There is a chair in front of you.",
		},
		{
			name:   "two items",
			counts: map[string]int{"cup": 2, "laptop": 1},
			ctx:    Environment,
			want:   "There is two cups and a laptop in front of you.",
		},
		{
			name:   "three items sorted by count",
			counts: map[string]int{"cup": 2, "laptop": 1, "pen": 4},
			ctx:    Environment,
			want:   "There is 4 pens, two cups, and a laptop in front of you.",
		},
		{
			name:   "three of a kind",
			counts: map[string]int{"book": 3},
			ctx:    Environment,
			want:   "There is three books in front of you.",
		},
		{
			name:   "ties ordered by label",
			counts: map[string]int{"pen": 1, "cup": 1},
			ctx:    Environment,
			want:   "There is a cup and a pen in front of you.",
		},
		{
			name:   "missing target wording",
			counts: map[string]int{"chair": 1, "bottle": 2},
			ctx:    MissingTarget,
			want:   "There's two bottles and a chair in front of you.",
		},
		{
			name:   "empty environment",
			counts: map[string]int{},
			ctx:    Environment,
			want:   "No objects detected.",
		},
		{
			name:   "empty missing target",
			counts: nil,
			ctx:    MissingTarget,
			want:   "",
		},
		{
			name:   "zero counts ignored",
			counts: map[string]int{"cup": 0},
			ctx:    Environment,
			want:   "No objects detected.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.counts, tt.ctx); got != tt.want {
				t.Errorf("Describe: got %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestPeopleSummary(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewPeopleSummary()
	p.Now = clock.now

	display, say, speak := p.Observe(1, false)
	if display != "Person detected" || say != "person detected" || !speak {
		t.Errorf("first person: got (%q, %q, %v)", display, say, speak)
	}

	clock.t = clock.t.Add(500 * time.Millisecond)
	if _, _, speak := p.Observe(1, false); speak {
		t.Error("same message inside the repeat window should not be spoken")
	}

	if display, say, speak := p.Observe(2, false); !speak || say != "2 people detected" || display != "2 people detected" {
		t.Errorf("count change: got (%q, %q, %v)", display, say, speak)
	}

	clock.t = clock.t.Add(2 * time.Second)
	if _, _, speak := p.Observe(2, true); speak {
		t.Error("must not speak while busy")
	}
	if _, _, speak := p.Observe(2, false); !speak {
		t.Error("expected repeat after the window")
	}

	if display, _, speak := p.Observe(0, false); display != NoPeople || speak {
		t.Errorf("no people: got (%q, %v)", display, speak)
	}
	if _, _, speak := p.Observe(2, false); !speak {
		t.Error("expected announcement after reset")
	}
}
