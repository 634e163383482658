// visnav serves navigation assistance for detection frames posted over
// HTTP or websocket, or produced by a local camera running YOLO.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-visnav/internal/config"
	"github.com/teslashibe/go-visnav/internal/log"
	"github.com/teslashibe/go-visnav/pkg/assist"
	"github.com/teslashibe/go-visnav/pkg/detection"
	"github.com/teslashibe/go-visnav/pkg/detection/camera"
	"github.com/teslashibe/go-visnav/pkg/detection/yolo"
	"github.com/teslashibe/go-visnav/pkg/haptics"
	"github.com/teslashibe/go-visnav/pkg/hub"
	"github.com/teslashibe/go-visnav/pkg/speech"
	"github.com/teslashibe/go-visnav/pkg/tts"
	"github.com/teslashibe/go-visnav/pkg/web"
)

type options struct {
	addr     string
	logLevel string
	tuning   string
	mode     string
	target   string
	voice    string
	camera   int
	model    string
}

func main() {
	opts := parseFlags()
	log.Init(opts.logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		log.Error("visnav failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags, falling back to the environment.
func parseFlags() options {
	var o options
	flag.StringVar(&o.addr, "addr", config.Addr(), "HTTP listen address (VISNAV_ADDR)")
	flag.StringVar(&o.logLevel, "log-level", config.LogLevel(), "debug, info, warn or error (LOG_LEVEL)")
	flag.StringVar(&o.tuning, "tuning", config.TuningPath(), "JSON tuning file (VISNAV_TUNING)")
	flag.StringVar(&o.mode, "mode", "", "Initial mode: object_detection, path_navigation, environment_analysis, face_analysis")
	flag.StringVar(&o.target, "target", "", "Initial navigation target (implies path_navigation)")
	flag.StringVar(&o.voice, "voice", config.String("VISNAV_VOICE", "alloy"), "OpenAI voice when OPENAI_API_KEY is set")
	flag.IntVar(&o.camera, "camera", config.Int("VISNAV_CAMERA", -1), "Local camera device id; -1 disables the camera loop")
	flag.StringVar(&o.model, "model", config.String("VISNAV_MODEL", yolo.DefaultConfig().ModelPath), "YOLOv8 ONNX model for the camera loop")
	flag.Parse()
	return o
}

func run(ctx context.Context, o options) error {
	logger := log.L()

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	events := hub.New("events", logger)
	go events.Run(ctx)

	sink, closeSink, err := newSink(o, events, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	vibrator := haptics.Multi{haptics.NewLogger(logger), haptics.NewRemote(events, logger)}
	session, err := assist.NewSession(cfg, sink, assist.WithPublisher(events), assist.WithVibrator(vibrator))
	if err != nil {
		return err
	}
	defer session.Close()

	if o.target != "" {
		if err := session.SetMode(assist.PathNavigation); err != nil {
			return err
		}
		if _, err := session.SetTarget(o.target); err != nil {
			return err
		}
	}

	if o.camera >= 0 {
		stop, err := startCamera(ctx, o, session, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	server := web.NewServer(o.addr, session, events, logger)
	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return server.Shutdown()
	case err := <-errc:
		return err
	}
}

func loadConfig(o options) (assist.Config, error) {
	cfg := assist.DefaultConfig()
	if o.tuning != "" {
		tuning, err := config.LoadTuning(o.tuning)
		if err != nil {
			return cfg, err
		}
		tuning.Apply(&cfg)
	}
	if o.mode != "" {
		m, err := assist.ParseMode(o.mode)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = m
	}
	return cfg, nil
}

// newSink speaks through OpenAI when a key is configured and streams the
// audio to event clients; otherwise utterances are only logged. A voice
// outage falls back to silent pacing.
func newSink(o options, events *hub.Hub, logger *slog.Logger) (speech.Sink, func(), error) {
	key := config.OpenAIKey()
	if key == "" {
		logger.Info("OPENAI_API_KEY not set, speech will be logged only")
		return speech.NewLogSink(tts.DefaultSpeed, logger), func() {}, nil
	}

	voice, err := tts.NewOpenAI(
		tts.WithAPIKey(key),
		tts.WithVoice(o.voice),
		tts.WithSpeed(tts.DefaultSpeed),
		tts.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("tts: %w", err)
	}
	provider, err := tts.NewChain(logger, voice, tts.NewSilent(tts.DefaultSpeed))
	if err != nil {
		voice.Close()
		return nil, nil, fmt.Errorf("tts: %w", err)
	}
	output := func(u speech.Utterance, audio *tts.AudioResult) error {
		if len(audio.Audio) > 0 {
			events.BroadcastBinary(audio.Audio)
		}
		return nil
	}
	sink := speech.NewProviderSink(provider, output, logger)
	return sink, func() {
		sink.Close()
		provider.Close()
	}, nil
}

func startCamera(ctx context.Context, o options, session *assist.Session, logger *slog.Logger) (func(), error) {
	ycfg := yolo.DefaultConfig()
	ycfg.ModelPath = o.model
	ycfg.Logger = logger
	detector, err := yolo.New(ycfg)
	if err != nil {
		return nil, err
	}

	ccfg := camera.DefaultConfig()
	ccfg.DeviceID = o.camera
	ccfg.Logger = logger
	source := camera.New(ccfg, detector)
	if err := source.Open(); err != nil {
		detector.Close()
		return nil, err
	}

	frames := make(chan detection.Frame, 1)
	go func() {
		defer close(frames)
		err := source.Run(ctx, func(f detection.Frame) {
			// Drop frames while the session is still busy with the last one.
			select {
			case frames <- f:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("camera stopped", "error", err)
		}
	}()
	go func() {
		if err := session.Run(ctx, frames); err != nil && ctx.Err() == nil {
			logger.Error("frame loop stopped", "error", err)
		}
	}()

	return func() {
		source.Close()
		detector.Close()
	}, nil
}
