package web

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-visnav/pkg/assist"
	"github.com/teslashibe/go-visnav/pkg/detection"
	"github.com/teslashibe/go-visnav/pkg/hub"
)

// TargetRequest sets the navigation target directly or from a spoken command.
type TargetRequest struct {
	Target  string `json:"target"`
	Command string `json:"command"`
}

// TargetResponse reports the target now being guided to.
type TargetResponse struct {
	Target  string        `json:"target"`
	Message string        `json:"message"`
	Status  assist.Status `json:"status"`
}

// ModeRequest switches the session mode.
type ModeRequest struct {
	Mode assist.Mode `json:"mode"`
}

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
}

// handleStatus returns the session snapshot
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.session.Status())
}

// handleTracks returns the live tracked objects
func (s *Server) handleTracks(c *fiber.Ctx) error {
	return c.JSON(s.session.Tracks())
}

// handleSetTarget starts navigation
func (s *Server) handleSetTarget(c *fiber.Ctx) error {
	var req TargetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}

	var target string
	switch {
	case strings.TrimSpace(req.Command) != "":
		t, err := s.session.Command(req.Command)
		if err != nil {
			return err
		}
		target = t
	case strings.TrimSpace(req.Target) != "":
		st, err := s.session.SetTarget(strings.ToLower(req.Target))
		if err != nil {
			return err
		}
		target = st.Target
	default:
		return fiber.NewError(fiber.StatusBadRequest, "target or command is required")
	}

	return c.JSON(TargetResponse{
		Target:  target,
		Message: "Navigating to: " + target,
		Status:  s.session.Status(),
	})
}

// handleClearTarget stops navigation
func (s *Server) handleClearTarget(c *fiber.Ctx) error {
	if err := s.session.ClearTarget(); err != nil {
		return err
	}
	return c.JSON(s.session.Status())
}

// handleSetMode switches pipelines
func (s *Server) handleSetMode(c *fiber.Ctx) error {
	var req ModeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	if err := s.session.SetMode(req.Mode); err != nil {
		return err
	}
	return c.JSON(s.session.Status())
}

// handleFrame ingests one detection frame
func (s *Server) handleFrame(c *fiber.Ctx) error {
	var frame detection.Frame
	if err := c.BodyParser(&frame); err != nil {
		return badRequest(err)
	}
	res, err := s.session.ProcessFrame(frame)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// handleEventsWS streams session events. The current status is sent first.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.events, c)
	if err := c.WriteJSON(hub.NewEvent(hub.EventStatus, s.session.Status())); err != nil {
		s.logger.Debug("initial status write failed", "error", err)
	}
	client.Run()
}

// frameReply answers each frame sent over /ws/frames.
type frameReply struct {
	Result *assist.FrameResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// handleFramesWS ingests a stream of JSON frames, replying to each in order.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	s.logger.Info("frame stream opened", "remote", c.RemoteAddr().String())
	defer s.logger.Info("frame stream closed", "remote", c.RemoteAddr().String())

	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var reply frameReply
		var frame detection.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			reply.Error = fmt.Sprintf("invalid frame: %v", err)
		} else if res, err := s.session.ProcessFrame(frame); err != nil {
			reply.Error = err.Error()
		} else {
			reply.Result = &res
		}

		if err := c.WriteJSON(reply); err != nil {
			return
		}
	}
}
