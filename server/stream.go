package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/engine"
)

const (
	FrameTypeConnected = "connected"
	FrameTypeEvent     = "event"
	FrameTypeHeartbeat = "heartbeat"
)

// Frame is one message on the event stream
type Frame struct {
	Type      string        `json:"type"`
	Timestamp int64         `json:"timestamp"`
	Event     *engine.Event `json:"event,omitempty"`
}

// StreamHandler serves the live event feed over SSE and WebSocket so the
// presentation layer can animate payouts, level-ups and bonus readiness
// without polling.
type StreamHandler struct {
	feed            *Feed
	logger          zerolog.Logger
	heartbeatPeriod time.Duration
	upgrader        websocket.Upgrader
}

// NewStreamHandler creates a stream handler over the given feed
func NewStreamHandler(feed *Feed, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		feed:            feed,
		logger:          logger.With().Str("handler", "stream").Logger(),
		heartbeatPeriod: 30 * time.Second,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// StreamSSE opens an SSE connection and streams engine events.
// Route: GET /api/v1/events
func (h *StreamHandler) StreamSSE(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.WriteHeader(http.StatusOK)

	sender := &sseSender{writer: c.Writer}
	h.stream(c, sender, nil)
}

// StreamWebSocket upgrades to WebSocket and streams engine events.
// Route: GET /api/v1/events/ws
func (h *StreamHandler) StreamWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close() //nolint:errcheck

	writeDeadline := 10 * time.Second
	conn.SetWriteDeadline(time.Now().Add(writeDeadline)) //nolint:errcheck

	done := make(chan struct{})

	// Detect connection close
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(10 * time.Minute)) //nolint:errcheck
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket connection closed unexpectedly")
			} else {
				h.logger.Debug().Err(err).Msg("WebSocket closed normally")
			}
		}
	}()

	// Send ping to keep connection alive
	pingTicker := time.NewTicker(30 * time.Second)
	go func() {
		defer pingTicker.Stop()
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				deadline := time.Now().Add(5 * time.Second)
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
					h.logger.Debug().Err(err).Msg("Failed to send ping")
					return
				}
			}
		}
	}()

	sender := &wsSender{
		conn:          conn,
		done:          done,
		logger:        h.logger,
		writeDeadline: writeDeadline,
	}
	h.stream(c, sender, done)
}

// stream handles the common loop for both SSE and WebSocket
func (h *StreamHandler) stream(c *gin.Context, sender frameSender, done <-chan struct{}) {
	events, cancel := h.feed.Listen(c.Request.Context())
	defer cancel()

	if err := sender.Send(&Frame{
		Type:      FrameTypeConnected,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send connected frame, stopping stream")
		return
	}

	heartbeat := time.NewTicker(h.heartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-done:
			h.logger.Debug().Msg("Connection closed, stopping stream")
			return
		case <-heartbeat.C:
			if err := sender.Send(&Frame{
				Type:      FrameTypeHeartbeat,
				Timestamp: time.Now().Unix(),
			}); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to send heartbeat, stopping stream")
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			frame := &Frame{
				Type:      FrameTypeEvent,
				Timestamp: ev.Timestamp.Unix(),
				Event:     &ev,
			}
			if err := sender.Send(frame); err != nil {
				h.logger.Warn().
					Err(err).
					Str("event_type", string(ev.Type)).
					Msg("Failed to send event, stopping stream")
				return
			}
		}
	}
}

// frameSender abstracts the transport (SSE or WebSocket)
type frameSender interface {
	Send(*Frame) error
}

// sseSender sends frames via SSE
type sseSender struct {
	writer http.ResponseWriter
}

func (s *sseSender) Send(frame *Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := s.writer.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}
	s.writer.(http.Flusher).Flush()
	return nil
}

// wsSender sends frames via WebSocket
type wsSender struct {
	conn          *websocket.Conn
	done          <-chan struct{}
	logger        zerolog.Logger
	writeDeadline time.Duration
}

func (s *wsSender) Send(frame *Frame) error {
	select {
	case <-s.done:
		return io.EOF
	default:
	}

	deadline := time.Now().Add(s.writeDeadline)
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to set write deadline")
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.logger.Warn().Err(err).Str("frame_type", frame.Type).Msg("WebSocket write failed, connection closed")
		} else {
			s.logger.Warn().Err(err).Str("frame_type", frame.Type).Msg("WebSocket write failed")
		}
		return err
	}
	return nil
}
