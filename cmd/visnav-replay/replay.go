package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-visnav/pkg/assist"
	"github.com/teslashibe/go-visnav/pkg/detection"
)

// reply mirrors the server's per-frame answer.
type reply struct {
	Result *assist.FrameResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// Stats summarizes a replay.
type Stats struct {
	Sent     int
	Rejected int
	Spoken   int
}

// replay sends each frame in r over conn, waiting for the server's reply
// before the next one. Blank lines and lines starting with # are skipped.
func replay(ctx context.Context, conn *websocket.Conn, r io.Reader, interval time.Duration, logger *slog.Logger) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var frame detection.Frame
		if err := json.Unmarshal([]byte(text), &frame); err != nil {
			return stats, fmt.Errorf("line %d: %w", line, err)
		}

		if tick != nil && stats.Sent > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return stats, err
		}

		if err := conn.WriteJSON(frame); err != nil {
			return stats, fmt.Errorf("send frame: %w", err)
		}
		stats.Sent++

		var rep reply
		if err := conn.ReadJSON(&rep); err != nil {
			return stats, fmt.Errorf("read reply: %w", err)
		}
		if rep.Error != "" {
			stats.Rejected++
			logger.Warn("frame rejected", "line", line, "error", rep.Error)
			continue
		}
		if rep.Result == nil {
			continue
		}

		for _, t := range rep.Result.Tickets {
			if t.Accepted() {
				stats.Spoken++
				logger.Info("say", "frame", rep.Result.Frame, "text", t.Text, "outcome", t.Outcome.String())
			}
		}
		logger.Debug("frame", "frame", rep.Result.Frame, "tracks", len(rep.Result.Tracks), "display", rep.Result.Display)
	}
	return stats, scanner.Err()
}
