package pgbus_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"lastmile/internal/adapters/out/postgres/pgtest"
	"lastmile/internal/adapters/out/realtime"
	"lastmile/internal/adapters/out/realtime/pgbus"

	"github.com/stretchr/testify/suite"
)

type PostgresBusIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	bus      *pgbus.Bus
}

func TestPostgresBusIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(PostgresBusIntegrationTestSuite))
}

func (suite *PostgresBusIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.bus = pgbus.New(database.DB, database.DSN, pgbus.DefaultChannel,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (suite *PostgresBusIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func (suite *PostgresBusIntegrationTestSuite) TestPublish_ReachesListener() {
	ctx, cancel := context.WithCancel(suite.T().Context())

	var (
		mu       sync.Mutex
		received []realtime.Envelope
	)
	done := make(chan error, 1)
	go func() {
		done <- suite.bus.Subscribe(ctx, func(env realtime.Envelope) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, env)
		})
	}()

	env := realtime.Envelope{Group: "Route_abc", Type: "ReceiveChatMessage", Payload: []byte(`{"text":"Hola"}`)}
	suite.Eventually(func() bool {
		suite.Require().NoError(suite.bus.Publish(ctx, env))
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	suite.NoError(<-done)

	mu.Lock()
	defer mu.Unlock()
	suite.Equal("Route_abc", received[0].Group)
	suite.Equal("ReceiveChatMessage", received[0].Type)
	suite.JSONEq(`{"text":"Hola"}`, string(received[0].Payload))
}

func (suite *PostgresBusIntegrationTestSuite) TestPublish_RejectsOversizedEnvelope() {
	env := realtime.Envelope{
		Group:   "admin",
		Type:    "ReceiveChatMessage",
		Payload: []byte(`"` + strings.Repeat("a", 9000) + `"`),
	}

	err := suite.bus.Publish(suite.T().Context(), env)

	suite.ErrorContains(err, "exceeds the notify limit")
}
