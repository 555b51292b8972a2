package ws_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lastmile/internal/adapters/in/ws"
	"lastmile/internal/adapters/out/realtime"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func newServer(t *testing.T) (*realtime.Hub, *httptest.Server) {
	t.Helper()
	hub := realtime.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	e := echo.New()
	ws.NewHandler(hub).Register(e)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return hub, server
}

func TestHandler_Serve(t *testing.T) {
	t.Run("should stream envelopes of the joined group", func(t *testing.T) {
		hub, server := newServer(t)
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?group=order_abc"

		conn, err := websocket.Dial(url, "", server.URL)
		require.NoError(t, err)
		defer conn.Close()
		require.Eventually(t, func() bool { return hub.Sessions("order_abc") == 1 }, time.Second, 10*time.Millisecond)

		hub.Deliver(realtime.Envelope{Group: "admin", Type: "RouteStarted"})
		hub.Deliver(realtime.Envelope{Group: "order_abc", Type: "DeliveryUpdate", Payload: []byte(`{"status":"InTransit"}`)})

		var env realtime.Envelope
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, websocket.JSON.Receive(conn, &env))
		assert.Equal(t, "DeliveryUpdate", env.Type)
		assert.JSONEq(t, `{"status":"InTransit"}`, string(env.Payload))
	})

	t.Run("should leave the group when the client disconnects", func(t *testing.T) {
		hub, server := newServer(t)
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?group=admin"

		conn, err := websocket.Dial(url, "", server.URL)
		require.NoError(t, err)
		require.Eventually(t, func() bool { return hub.Sessions("admin") == 1 }, time.Second, 10*time.Millisecond)

		require.NoError(t, conn.Close())

		assert.Eventually(t, func() bool { return hub.Sessions("admin") == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("should reject unknown groups", func(t *testing.T) {
		_, server := newServer(t)

		resp, err := http.Get(server.URL + "/ws?group=everyone")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
