// Package ws serves the real-time channel over WebSocket. A client joins one
// group with GET /ws?group=<key> and then only listens.
package ws

import (
	"net/http"
	"sync"
	"time"

	"lastmile/internal/adapters/out/realtime"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"
)

const writeTimeout = 10 * time.Second

type Handler struct {
	hub *realtime.Hub
}

func NewHandler(hub *realtime.Hub) *Handler {
	return &Handler{hub: hub}
}

// Register mounts the endpoint on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve upgrades the request and keeps the session joined until the client
// goes away. Incoming frames are read and discarded.
func (h *Handler) Serve(c echo.Context) error {
	group := c.QueryParam("group")
	if !realtime.ValidGroup(group) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown group")
	}

	websocket.Handler(func(conn *websocket.Conn) {
		s := &session{conn: conn}
		leave := h.hub.Join(group, s)
		defer leave()
		defer s.Close()

		var discard string
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}).ServeHTTP(c.Response(), c.Request())
	return nil
}

// session serializes writes; the hub and the keepalive job write concurrently.
type session struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *session) Send(env realtime.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return websocket.JSON.Send(s.conn, env)
}

func (s *session) Close() error {
	return s.conn.Close()
}
