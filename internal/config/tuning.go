package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/teslashibe/go-visnav/pkg/assist"
	"github.com/teslashibe/go-visnav/pkg/tracking"
)

const maxTuningFileSize = 1 * 1024 * 1024 // 1MB

// Tuning overrides the built-in defaults. Every field is optional; omitted
// fields keep the value already in the config being tuned.
type Tuning struct {
	Mode *string `json:"mode,omitempty"`

	// Tracking
	MaxDistance   *float64 `json:"max_distance,omitempty"`
	Matcher       *string  `json:"matcher,omitempty"` // "greedy" or "hungarian"
	MaxLostFrames *int     `json:"max_lost_frames,omitempty"`
	Smoothing     *bool    `json:"smoothing,omitempty"`

	// Guidance
	DirectionThreshold *float64 `json:"direction_threshold,omitempty"`
	ReachedRatio       *float64 `json:"reached_ratio,omitempty"`
	VeryCloseRatio     *float64 `json:"very_close_ratio,omitempty"`
	FewStepsRatio      *float64 `json:"few_steps_ratio,omitempty"`
	RepeatInterval     *int     `json:"repeat_interval,omitempty"`
	MaxMissingFrames   *int     `json:"max_missing_frames,omitempty"`
	ReachedPulse       *string  `json:"reached_pulse,omitempty"` // duration string like "300ms"
	MissingPulse       *string  `json:"missing_pulse,omitempty"`

	// Announcements
	AnnounceCooldown *string `json:"announce_cooldown,omitempty"` // duration string like "3s"
}

// LoadTuning reads and validates a JSON tuning file.
func LoadTuning(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxTuningFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxTuningFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	t := &Tuning{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return t, nil
}

// Validate checks the values that are set.
func (t *Tuning) Validate() error {
	if t.Mode != nil {
		if _, err := assist.ParseMode(*t.Mode); err != nil {
			return err
		}
	}
	if t.MaxDistance != nil && *t.MaxDistance <= 0 {
		return fmt.Errorf("max_distance must be positive, got %f", *t.MaxDistance)
	}
	if t.Matcher != nil && *t.Matcher != "greedy" && *t.Matcher != "hungarian" {
		return fmt.Errorf("matcher must be greedy or hungarian, got %q", *t.Matcher)
	}
	for name, v := range map[string]*int{
		"max_lost_frames":    t.MaxLostFrames,
		"repeat_interval":    t.RepeatInterval,
		"max_missing_frames": t.MaxMissingFrames,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, *v)
		}
	}
	if t.MaxMissingFrames != nil && *t.MaxMissingFrames == 0 {
		return errors.New("max_missing_frames must be at least 1")
	}
	for name, v := range map[string]*float64{
		"direction_threshold": t.DirectionThreshold,
		"reached_ratio":       t.ReachedRatio,
		"very_close_ratio":    t.VeryCloseRatio,
		"few_steps_ratio":     t.FewStepsRatio,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}
	for name, v := range map[string]*string{
		"reached_pulse":     t.ReachedPulse,
		"missing_pulse":     t.MissingPulse,
		"announce_cooldown": t.AnnounceCooldown,
	} {
		if v == nil {
			continue
		}
		if _, err := time.ParseDuration(*v); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
		}
	}
	return nil
}

// Apply writes every set field onto cfg. Call Validate (or LoadTuning) first.
func (t *Tuning) Apply(cfg *assist.Config) {
	if t.Mode != nil {
		if m, err := assist.ParseMode(*t.Mode); err == nil {
			cfg.Mode = m
		}
	}

	if t.MaxDistance != nil {
		cfg.Tracking.MaxDistance = *t.MaxDistance
	}
	if t.Matcher != nil {
		cfg.Tracking.Matcher = tracking.ParseMatcher(*t.Matcher)
	}
	if t.MaxLostFrames != nil {
		cfg.Tracking.MaxLostFrames = *t.MaxLostFrames
	}
	if t.Smoothing != nil {
		cfg.Tracking.Smoothing = *t.Smoothing
	}

	if t.DirectionThreshold != nil {
		cfg.Guidance.DirectionThreshold = *t.DirectionThreshold
	}
	if t.ReachedRatio != nil {
		cfg.Guidance.ReachedRatio = *t.ReachedRatio
	}
	if t.VeryCloseRatio != nil {
		cfg.Guidance.VeryCloseRatio = *t.VeryCloseRatio
	}
	if t.FewStepsRatio != nil {
		cfg.Guidance.FewStepsRatio = *t.FewStepsRatio
	}
	if t.RepeatInterval != nil {
		cfg.Guidance.RepeatInterval = *t.RepeatInterval
	}
	if t.MaxMissingFrames != nil {
		cfg.Guidance.MaxMissingFrames = *t.MaxMissingFrames
	}
	applyDuration(t.ReachedPulse, &cfg.Guidance.ReachedPulse)
	applyDuration(t.MissingPulse, &cfg.Guidance.MissingPulse)
	applyDuration(t.AnnounceCooldown, &cfg.Announcer.Cooldown)
}

func applyDuration(s *string, dst *time.Duration) {
	if s == nil {
		return
	}
	if d, err := time.ParseDuration(*s); err == nil {
		*dst = d
	}
}
