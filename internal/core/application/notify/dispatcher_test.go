package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"lastmile/internal/core/application/notify"
	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/subscription"
	"lastmile/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, e event.Event) error {
	return m.Called(ctx, e).Error(0)
}

type MockPushSender struct{ mock.Mock }

func (m *MockPushSender) Send(ctx context.Context, deviceToken string, push event.Push, data map[string]string) error {
	return m.Called(ctx, deviceToken, push, data).Error(0)
}

type MockStaffNotifier struct{ mock.Mock }

func (m *MockStaffNotifier) NotifyStaff(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

type MockSubscriptions struct{ mock.Mock }

func (m *MockSubscriptions) Upsert(ctx context.Context, s *subscription.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubscriptions) DeleteByDeviceToken(ctx context.Context, deviceToken string) error {
	return m.Called(ctx, deviceToken).Error(0)
}

func (m *MockSubscriptions) FindByClient(ctx context.Context, clientID kernel.UUID) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, clientID)
	subs, _ := args.Get(0).([]*subscription.Subscription)
	return subs, args.Error(1)
}

func (m *MockSubscriptions) FindByRouteToken(ctx context.Context, token kernel.Token) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, token)
	subs, _ := args.Get(0).([]*subscription.Subscription)
	return subs, args.Error(1)
}

func (m *MockSubscriptions) FindByRole(ctx context.Context, role subscription.Role) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, role)
	subs, _ := args.Get(0).([]*subscription.Subscription)
	return subs, args.Error(1)
}

func (m *MockSubscriptions) Touch(ctx context.Context, deviceTokens []string, at time.Time) error {
	return m.Called(ctx, deviceTokens, at).Error(0)
}

func (m *MockSubscriptions) DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type fixture struct {
	publisher     *MockPublisher
	sender        *MockPushSender
	staff         *MockStaffNotifier
	subscriptions *MockSubscriptions
	dispatcher    *notify.Dispatcher
}

func newFixture() fixture {
	f := fixture{
		publisher:     &MockPublisher{},
		sender:        &MockPushSender{},
		staff:         &MockStaffNotifier{},
		subscriptions: &MockSubscriptions{},
	}
	f.dispatcher = notify.NewDispatcher(f.publisher, f.subscriptions,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		notify.WithPush(f.sender),
		notify.WithStaffNotifier(f.staff),
		notify.WithClock(func() time.Time { return now }))
	return f
}

func (f fixture) assertExpectations(t *testing.T) {
	f.publisher.AssertExpectations(t)
	f.sender.AssertExpectations(t)
	f.staff.AssertExpectations(t)
	f.subscriptions.AssertExpectations(t)
}

func device(t *testing.T, role subscription.Role, deviceToken string, clientID *kernel.UUID, routeToken kernel.Token) *subscription.Subscription {
	t.Helper()
	s, err := subscription.NewSubscription(kernel.NewUUID(), role, deviceToken, clientID, routeToken, now.Add(-time.Hour))
	require.NoError(t, err)
	return s
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("should publish events without push to the real-time channel only", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		e := event.ForCustomer("abc", event.LocationUpdate, event.LocationUpdatePayload{Latitude: 1, Longitude: 2})
		f.publisher.On("Publish", ctx, e).Return(nil).Once()

		f.dispatcher.Dispatch(ctx, []event.Event{e})

		f.assertExpectations(t)
	})

	t.Run("should push to the client devices and touch them", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		clientID := kernel.NewUUID()
		push := event.Push{Title: "En camino", Body: "Ya sale", Link: "/pedido/abc", ClientID: &clientID}
		e := event.ForCustomer("abc", event.DeliveryUpdate, event.DeliveryUpdatePayload{Status: event.StatusInTransit}).WithPush(push)
		phone := device(t, subscription.ClientRole, "phone", &clientID, "")
		data := map[string]string{"type": "DeliveryUpdate", "link": "/pedido/abc"}

		mock.InOrder(
			f.publisher.On("Publish", ctx, e).Return(nil).Once(),
			f.subscriptions.On("FindByClient", ctx, clientID).Return([]*subscription.Subscription{phone}, nil).Once(),
			f.sender.On("Send", ctx, "phone", push, data).Return(nil).Once(),
			f.subscriptions.On("Touch", ctx, []string{"phone"}, now).Return(nil).Once(),
		)

		f.dispatcher.Dispatch(ctx, []event.Event{e})

		f.assertExpectations(t)
	})

	t.Run("should resolve relative links against the public base URL", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		f.dispatcher = notify.NewDispatcher(f.publisher, f.subscriptions,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
			notify.WithPush(f.sender),
			notify.WithPublicBaseURL("https://tienda.example.com/"),
			notify.WithClock(func() time.Time { return now }))
		clientID := kernel.NewUUID()
		push := event.Push{Title: "En camino", Link: "/pedido/abc", ClientID: &clientID}
		e := event.ForCustomer("abc", event.DeliveryUpdate, event.DeliveryUpdatePayload{Status: event.StatusInTransit}).WithPush(push)
		phone := device(t, subscription.ClientRole, "phone", &clientID, "")
		sent := push
		sent.Link = "https://tienda.example.com/pedido/abc"
		data := map[string]string{"type": "DeliveryUpdate", "link": "https://tienda.example.com/pedido/abc"}

		f.publisher.On("Publish", ctx, e).Return(nil).Once()
		f.subscriptions.On("FindByClient", ctx, clientID).Return([]*subscription.Subscription{phone}, nil).Once()
		f.sender.On("Send", ctx, "phone", sent, data).Return(nil).Once()
		f.subscriptions.On("Touch", ctx, []string{"phone"}, now).Return(nil).Once()

		f.dispatcher.Dispatch(ctx, []event.Event{e})

		f.assertExpectations(t)
		assert.Equal(t, "/pedido/abc", e.Push.Link)
	})

	t.Run("should prune devices whose token is gone and keep going", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		routeToken := kernel.Token("route-token")
		push := event.Push{Title: "Mensaje de la tienda", Body: "Hola", RouteToken: routeToken}
		e := event.ForDriver(routeToken, event.ReceiveChatMessage, event.ChatPayload{Sender: "Admin", Text: "Hola"}).WithPush(push)
		stale := device(t, subscription.DriverRole, "stale", nil, routeToken)
		fresh := device(t, subscription.DriverRole, "fresh", nil, routeToken)

		mock.InOrder(
			f.publisher.On("Publish", ctx, e).Return(errors.New("bus down")).Once(),
			f.subscriptions.On("FindByRouteToken", ctx, routeToken).
				Return([]*subscription.Subscription{stale, fresh}, nil).Once(),
			f.sender.On("Send", ctx, "stale", push, mock.Anything).Return(ports.ErrDeviceTokenIsGone).Once(),
			f.subscriptions.On("DeleteByDeviceToken", ctx, "stale").Return(nil).Once(),
			f.sender.On("Send", ctx, "fresh", push, mock.Anything).Return(nil).Once(),
			f.subscriptions.On("Touch", ctx, []string{"fresh"}, now).Return(nil).Once(),
		)

		f.dispatcher.Dispatch(ctx, []event.Event{e})

		f.assertExpectations(t)
	})

	t.Run("should broadcast staff events and skip location pings", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		failed := event.ForStaff(event.DeliveryFailed, event.DeliveryFailedPayload{
			OrderID:       "0b6f1c2e-aaaa-bbbb-cccc-000000000000",
			FailureReason: "No estaba",
		})
		location := event.ForStaff(event.DriverLocation, event.DriverLocationPayload{RouteID: "r"})

		mock.InOrder(
			f.publisher.On("Publish", ctx, failed).Return(nil).Once(),
			f.staff.On("NotifyStaff", ctx, "❌ Pedido 0b6f1c2e no entregado: No estaba").
				Return(errors.New("telegram down")).Once(),
			f.publisher.On("Publish", ctx, location).Return(nil).Once(),
		)

		f.dispatcher.Dispatch(ctx, []event.Event{failed, location})

		f.assertExpectations(t)
	})

	t.Run("should not broadcast the staff's own chat messages", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		own := event.ForStaff(event.ReceiveChatMessage, event.ChatPayload{RouteID: "r", Sender: "Admin", Text: "Hola"})
		driver := event.ForStaff(event.ReceiveChatMessage, event.ChatPayload{RouteID: "r", Sender: "Driver", Text: "Voy"})

		f.publisher.On("Publish", ctx, mock.Anything).Return(nil).Twice()
		f.staff.On("NotifyStaff", ctx, "💬 Repartidor (ruta r): Voy").Return(nil).Once()

		f.dispatcher.Dispatch(ctx, []event.Event{own, driver})

		f.assertExpectations(t)
	})
}

func TestDispatcher_Notify(t *testing.T) {
	t.Run("should deliver in the background after the request context ends", func(t *testing.T) {
		f := newFixture()
		ctx, cancel := context.WithCancel(t.Context())
		e := event.ForStaff(event.RouteStarted, event.RoutePayload{RouteID: "0b6f1c2e-1"})
		f.publisher.On("Publish", mock.Anything, e).Return(nil).Once()
		f.staff.On("NotifyStaff", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }),
			"🚚 Ruta 0b6f1c2e iniciada").Return(nil).Once()

		f.dispatcher.Notify(ctx, []event.Event{e})
		cancel()
		f.dispatcher.Wait()

		f.assertExpectations(t)
	})

	t.Run("should ignore an empty batch", func(t *testing.T) {
		f := newFixture()

		f.dispatcher.Notify(t.Context(), nil)
		f.dispatcher.Wait()

		assert.Empty(t, f.publisher.Calls)
	})
}
