// visnav-replay streams recorded detection frames to a running visnav
// server and prints what the server decided for each one.
//
// Input is JSON lines, one detection frame per line:
//
//	{"width":640,"height":480,"detections":[{"label":"cup","score":0.8,"box":{...}}]}
package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-visnav/internal/log"
)

func main() {
	server := flag.String("server", "ws://localhost:8080/ws/frames", "Frame ingestion websocket URL")
	input := flag.String("input", "-", "JSON lines file of frames, - for stdin")
	fps := flag.Float64("fps", 10, "Frames per second to send; 0 sends as fast as replies arrive")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log.Init(*level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var r io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			log.Error("open input", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, *server, http.Header{})
	if err != nil {
		log.Error("connect", "server", *server, "error", err)
		os.Exit(1)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	var interval time.Duration
	if *fps > 0 {
		interval = time.Duration(float64(time.Second) / *fps)
	}

	stats, err := replay(ctx, conn, r, interval, log.Component("replay"))
	log.Info("replay finished", "sent", stats.Sent, "rejected", stats.Rejected, "spoken", stats.Spoken)
	if err != nil && ctx.Err() == nil {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
}
