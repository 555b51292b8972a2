package commands_test

import (
	"context"
	"io"
	"testing"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/loyalty"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/model/subscription"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClientRepository struct{ mock.Mock }

func (m *MockClientRepository) Add(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Get(ctx context.Context, id kernel.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) GetByPhone(ctx context.Context, phone string) (*client.Client, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*client.Client, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*client.Client), args.Error(1)
}

func (m *MockClientRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByAccessToken(ctx context.Context, token kernel.Token) (*order.Order, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) Find(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByAccessToken(ctx context.Context, token kernel.Token) (*order.Order, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetPendingByClient(ctx context.Context, clientID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByClient(ctx context.Context, clientID kernel.UUID) (int64, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(int64), args.Error(1)
}

type MockRouteRepository struct{ mock.Mock }

func (m *MockRouteRepository) Add(ctx context.Context, r *route.Route) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRouteRepository) Update(ctx context.Context, r *route.Route) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRouteRepository) UpdateLocation(ctx context.Context, r *route.Route) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	return m.route(m.Called(ctx, id))
}

func (m *MockRouteRepository) GetByDriverToken(ctx context.Context, token kernel.Token) (*route.Route, error) {
	return m.route(m.Called(ctx, token))
}

func (m *MockRouteRepository) Find(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	return m.route(m.Called(ctx, id))
}

func (m *MockRouteRepository) FindByDriverToken(ctx context.Context, token kernel.Token) (*route.Route, error) {
	return m.route(m.Called(ctx, token))
}

func (m *MockRouteRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRouteRepository) route(args mock.Arguments) (*route.Route, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

type MockLoyaltyRepository struct{ mock.Mock }

func (m *MockLoyaltyRepository) Add(ctx context.Context, transactions ...*loyalty.Transaction) error {
	return m.Called(ctx, transactions).Error(0)
}

type MockChatRepository struct{ mock.Mock }

func (m *MockChatRepository) Add(ctx context.Context, message *chat.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockChatRepository) DeleteByRoute(ctx context.Context, routeID kernel.UUID) error {
	return m.Called(ctx, routeID).Error(0)
}

type MockPushSubscriptionRepository struct{ mock.Mock }

func (m *MockPushSubscriptionRepository) Upsert(ctx context.Context, s *subscription.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockPushSubscriptionRepository) DeleteByDeviceToken(ctx context.Context, deviceToken string) error {
	return m.Called(ctx, deviceToken).Error(0)
}

func (m *MockPushSubscriptionRepository) FindByClient(
	ctx context.Context,
	clientID kernel.UUID,
) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func (m *MockPushSubscriptionRepository) FindByRouteToken(
	ctx context.Context,
	token kernel.Token,
) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, token)
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func (m *MockPushSubscriptionRepository) FindByRole(
	ctx context.Context,
	role subscription.Role,
) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func (m *MockPushSubscriptionRepository) Touch(ctx context.Context, deviceTokens []string, at time.Time) error {
	return m.Called(ctx, deviceTokens, at).Error(0)
}

func (m *MockPushSubscriptionRepository) DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockUoW serves every unit of work flavor the handlers ask for.
type MockUoW struct {
	mock.Mock

	clients *MockClientRepository
	orders  *MockOrderRepository
	routes  *MockRouteRepository
	ledger  *MockLoyaltyRepository
	chat    *MockChatRepository
}

func newMockUoW() *MockUoW {
	return &MockUoW{
		clients: new(MockClientRepository),
		orders:  new(MockOrderRepository),
		routes:  new(MockRouteRepository),
		ledger:  new(MockLoyaltyRepository),
		chat:    new(MockChatRepository),
	}
}

func (m *MockUoW) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) ClientRepository() ports.ClientRepository {
	return m.clients
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.orders
}

func (m *MockUoW) RouteRepository() ports.RouteRepository {
	return m.routes
}

func (m *MockUoW) LoyaltyRepository() ports.LoyaltyRepository {
	return m.ledger
}

func (m *MockUoW) ChatRepository() ports.ChatRepository {
	return m.chat
}

func (m *MockUoW) AssertExpectations(t *testing.T) {
	t.Helper()
	m.Mock.AssertExpectations(t)
	m.clients.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.routes.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
	m.chat.AssertExpectations(t)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	return m.Called().Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	return m.Called().Get(0).(commands.OrderUoW)
}

type MockChatUoWFactory struct{ mock.Mock }

func (m *MockChatUoWFactory) Create() commands.ChatUoW {
	return m.Called().Get(0).(commands.ChatUoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, events []event.Event) {
	m.Called(ctx, events)
}

type MockEvidenceStore struct{ mock.Mock }

func (m *MockEvidenceStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename, content)
	return args.String(0), args.Error(1)
}

var now = time.Date(2026, 6, 2, 9, 30, 0, 0, time.UTC)

// routeFixture is a Pending route over n delivery orders worth 250 each,
// one client per order.
type routeFixture struct {
	route   *route.Route
	orders  []*order.Order
	clients []*client.Client
}

func newRouteFixture(t *testing.T, n int) routeFixture {
	t.Helper()

	var f routeFixture
	for range n {
		c := newClient(t)
		f.clients = append(f.clients, c)
		f.orders = append(f.orders, newOrder(t, c, order.Delivery))
	}

	r, _, err := services.NewRouteLifecycle().Create(kernel.NewUUID(), kernel.NewToken(), f.orders, now)
	require.NoError(t, err)
	f.route = r
	return f
}

func (f routeFixture) start(t *testing.T) routeFixture {
	t.Helper()
	_, err := services.NewRouteLifecycle().Start(f.route, services.NewParticipants(f.orders, f.clients), now)
	require.NoError(t, err)
	return f
}

func (f routeFixture) stop(t *testing.T, i int) *route.Delivery {
	t.Helper()
	d, err := f.route.DeliveryForOrder(f.orders[i].ID())
	require.NoError(t, err)
	return d
}

// expectParticipants registers the reads every route workflow makes after
// locking the route.
func (f routeFixture) expectParticipants(uow *MockUoW) []*mock.Call {
	clientIDs := make([]kernel.UUID, 0, len(f.clients))
	for _, c := range f.clients {
		clientIDs = append(clientIDs, c.ID())
	}
	return []*mock.Call{
		uow.orders.On("GetMany", mock.Anything, f.route.OrderIDs()).Return(f.orders, nil).Once(),
		uow.clients.On("GetMany", mock.Anything, clientIDs).Return(f.clients, nil).Once(),
	}
}

func newClient(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.NewClient(kernel.NewUUID(), "Ana", "5551234567", "Calle 1")
	require.NoError(t, err)
	return c
}

func newOrder(t *testing.T, c *client.Client, orderType order.Type) *order.Order {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), "Vestido", 1, kernel.MustMoney("190"))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), c.ID(), orderType, []*order.Item{item},
		kernel.MustMoney("60"), kernel.NewToken(), time.Now().UTC(), time.Now().UTC().Add(72*time.Hour))
	require.NoError(t, err)
	return o
}

func anyEvents(types ...event.Type) any {
	return mock.MatchedBy(func(events []event.Event) bool {
		if len(events) != len(types) {
			return false
		}
		for i, e := range events {
			if e.Type != types[i] {
				return false
			}
		}
		return true
	})
}
