// Package web serves the HTTP and websocket API for an assist session.
package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-visnav/pkg/assist"
	"github.com/teslashibe/go-visnav/pkg/command"
	"github.com/teslashibe/go-visnav/pkg/hub"
)

// Server is the API server
type Server struct {
	app     *fiber.App
	addr    string
	session *assist.Session
	events  *hub.Hub
	logger  *slog.Logger
}

// NewServer creates a server for session. Events are streamed from the
// given hub, whose Run loop the caller owns.
func NewServer(addr string, session *assist.Session, events *hub.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:    addr,
		session: session,
		events:  events,
		logger:  logger.With("component", "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "visnav",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	// CORS for phone clients served from elsewhere
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/tracks", s.handleTracks)
	api.Post("/target", s.handleSetTarget)
	api.Delete("/target", s.handleClearTarget)
	api.Post("/mode", s.handleSetMode)
	api.Post("/frames", s.handleFrame)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/events", websocket.New(s.handleEventsWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, assist.ErrWrongMode):
		return fiber.StatusConflict
	case errors.Is(err, assist.ErrClosed):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, assist.ErrInvalidFrame),
		errors.Is(err, assist.ErrUnknownMode),
		errors.Is(err, command.ErrNoTarget):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if errors.Is(err, command.ErrNoTarget) {
		msg = command.NotUnderstood
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(errorBody{Error: msg})
}
