package redisbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"lastmile/internal/adapters/out/realtime"
	"lastmile/internal/adapters/out/realtime/redisbus"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisBusIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	addr      string
}

func TestRedisBusIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RedisBusIntegrationTestSuite))
}

func (suite *RedisBusIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	suite.addr, err = container.Endpoint(ctx, "")
	suite.Require().NoError(err)
}

func (suite *RedisBusIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RedisBusIntegrationTestSuite) TestPublish_ReachesEverySubscriber() {
	client := redisbus.NewClient(suite.addr, "", 0)
	defer client.Close()
	bus := redisbus.New(client, "lastmile:test:"+suite.T().Name())

	ctx, cancel := context.WithCancel(suite.T().Context())
	defer cancel()

	var (
		mu       sync.Mutex
		received []realtime.Envelope
	)
	deliver := func(env realtime.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, env)
	}
	for range 2 {
		go func() { _ = bus.Subscribe(ctx, deliver) }()
	}

	env := realtime.Envelope{Group: "admin", Type: "RouteStarted", Payload: []byte(`{"routeId":"r1"}`)}
	suite.Eventually(func() bool {
		suite.Require().NoError(bus.Publish(ctx, env))
		mu.Lock()
		defer mu.Unlock()
		return len(received) >= 2
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	suite.Equal("admin", received[0].Group)
	suite.JSONEq(`{"routeId":"r1"}`, string(received[0].Payload))
}

func (suite *RedisBusIntegrationTestSuite) TestSubscribe_ReturnsWhenContextEnds() {
	client := redisbus.NewClient(suite.addr, "", 0)
	defer client.Close()
	bus := redisbus.New(client, redisbus.DefaultChannel)

	ctx, cancel := context.WithCancel(suite.T().Context())
	done := make(chan error, 1)
	go func() { done <- bus.Subscribe(ctx, func(realtime.Envelope) {}) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		suite.NoError(err)
	case <-time.After(5 * time.Second):
		suite.Fail("subscriber did not stop")
	}
}
