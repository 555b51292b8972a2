package realtime_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"lastmile/internal/adapters/out/realtime"
	"lastmile/internal/core/domain/model/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu       sync.Mutex
	received []realtime.Envelope
	fail     bool
	closed   bool
}

func (s *fakeSession) Send(env realtime.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broken pipe")
	}
	s.received = append(s.received, env)
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) envelopes() []realtime.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]realtime.Envelope(nil), s.received...)
}

func newHub() *realtime.Hub {
	return realtime.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHub(t *testing.T) {
	t.Run("should deliver only to sessions of the envelope group", func(t *testing.T) {
		hub := newHub()
		staff, customer := &fakeSession{}, &fakeSession{}
		hub.Join("admin", staff)
		hub.Join("order_abc", customer)

		hub.Deliver(realtime.Envelope{Group: "order_abc", Type: "DeliveryUpdate"})

		assert.Empty(t, staff.envelopes())
		require.Len(t, customer.envelopes(), 1)
		assert.Equal(t, "DeliveryUpdate", customer.envelopes()[0].Type)
	})

	t.Run("should stop delivering after leave", func(t *testing.T) {
		hub := newHub()
		s := &fakeSession{}
		leave := hub.Join("admin", s)

		leave()
		hub.Deliver(realtime.Envelope{Group: "admin", Type: "RouteStarted"})

		assert.Empty(t, s.envelopes())
		assert.Zero(t, hub.Sessions("admin"))
	})

	t.Run("should drop and close a session whose write fails", func(t *testing.T) {
		hub := newHub()
		broken, healthy := &fakeSession{fail: true}, &fakeSession{}
		hub.Join("Route_xyz", broken)
		hub.Join("Route_xyz", healthy)

		hub.Deliver(realtime.Envelope{Group: "Route_xyz", Type: "ReceiveChatMessage"})

		assert.True(t, broken.closed)
		assert.Equal(t, 1, hub.Sessions("Route_xyz"))
		assert.Len(t, healthy.envelopes(), 1)
	})

	t.Run("should ping every session and count the live ones", func(t *testing.T) {
		hub := newHub()
		a, b, dead := &fakeSession{}, &fakeSession{}, &fakeSession{fail: true}
		hub.Join("admin", a)
		hub.Join("order_abc", b)
		hub.Join("order_abc", dead)

		alive := hub.Ping()

		assert.Equal(t, 2, alive)
		require.Len(t, a.envelopes(), 1)
		assert.Equal(t, realtime.PingType, a.envelopes()[0].Type)
		assert.Equal(t, 1, hub.Sessions("order_abc"))
	})

	t.Run("should close every session on shutdown", func(t *testing.T) {
		hub := newHub()
		s := &fakeSession{}
		hub.Join("admin", s)

		hub.Close()

		assert.True(t, s.closed)
		assert.Zero(t, hub.Sessions("admin"))
	})
}

func TestPublisher_MemoryBus(t *testing.T) {
	t.Run("should carry events from the publisher to the hub", func(t *testing.T) {
		hub := newHub()
		bus := realtime.NewMemoryBus()
		s := &fakeSession{}
		hub.Join(event.CustomerKey("abc"), s)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- hub.Run(ctx, bus) }()
		require.Eventually(t, func() bool {
			_ = realtime.NewPublisher(bus).Publish(ctx, event.ForCustomer("abc", event.DeliveryUpdate,
				event.DeliveryUpdatePayload{Status: event.StatusInTransit, Message: event.MessageInTransit}))
			return len(s.envelopes()) > 0
		}, time.Second, 10*time.Millisecond)

		cancel()
		require.NoError(t, <-done)

		env := s.envelopes()[0]
		assert.Equal(t, "order_abc", env.Group)
		assert.JSONEq(t, `{"status":"InTransit","message":"¡El repartidor va en camino hacia ti!"}`, string(env.Payload))
	})
}

func TestValidGroup(t *testing.T) {
	assert.True(t, realtime.ValidGroup("admin"))
	assert.True(t, realtime.ValidGroup("order_abc"))
	assert.True(t, realtime.ValidGroup("Route_abc"))
	assert.False(t, realtime.ValidGroup("order_"))
	assert.False(t, realtime.ValidGroup("route_abc"))
	assert.False(t, realtime.ValidGroup(""))
}
