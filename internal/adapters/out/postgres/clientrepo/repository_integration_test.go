package clientrepo_test

import (
	"context"
	"testing"

	"lastmile/internal/adapters/out/postgres/clientrepo"
	"lastmile/internal/adapters/out/postgres/pgtest"
	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

type ClientRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *clientrepo.GormClientRepository
	tracker    *MockAggregateTracker
}

func (suite *ClientRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *ClientRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Return()
	suite.repository = clientrepo.NewGormClientRepository(suite.database.DB, suite.tracker)
}

func (suite *ClientRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func (suite *ClientRepositoryIntegrationTestSuite) newClient(phone string) *client.Client {
	c, err := client.NewClient(kernel.NewUUID(), "Lucía Pérez", phone, "Av. Juárez 12")
	suite.Require().NoError(err)
	return c
}

func (suite *ClientRepositoryIntegrationTestSuite) TestAddAndGet() {
	ctx := suite.T().Context()
	c := suite.newClient("5512345678")

	suite.Require().NoError(suite.repository.Add(ctx, c))

	byID, err := suite.repository.Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.True(c.IsEqual(byID))
	suite.Equal(client.CategoryNew, byID.Category())

	byPhone, err := suite.repository.GetByPhone(ctx, "5512345678")
	suite.Require().NoError(err)
	suite.True(c.IsEqual(byPhone))

	suite.ErrorIs(suite.repository.Add(ctx, suite.newClient("5512345678")), errs.ErrConflict)
}

func (suite *ClientRepositoryIntegrationTestSuite) TestUpdate_Balances() {
	ctx := suite.T().Context()
	c := suite.newClient("5512345678")
	suite.Require().NoError(suite.repository.Add(ctx, c))

	suite.Require().NoError(c.Credit(40))
	suite.Require().NoError(c.Debit(15))
	c.PromoteToFrequent()
	suite.Require().NoError(suite.repository.Update(ctx, c))

	loaded, err := suite.repository.Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.Equal(25, loaded.CurrentPoints())
	suite.Equal(25, loaded.LifetimePoints())
	suite.Equal(client.CategoryFrequent, loaded.Category())
}

func (suite *ClientRepositoryIntegrationTestSuite) TestGetMany() {
	ctx := suite.T().Context()
	first := suite.newClient("5511111111")
	second := suite.newClient("5522222222")
	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(suite.repository.Add(ctx, second))

	clients, err := suite.repository.GetMany(ctx, []kernel.UUID{first.ID(), kernel.NewUUID(), second.ID()})
	suite.Require().NoError(err)
	suite.Len(clients, 2)
}

func (suite *ClientRepositoryIntegrationTestSuite) TestDelete() {
	ctx := suite.T().Context()
	c := suite.newClient("5512345678")
	suite.Require().NoError(suite.repository.Add(ctx, c))

	suite.Require().NoError(suite.repository.Delete(ctx, c.ID()))

	_, err := suite.repository.Get(ctx, c.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
	suite.ErrorIs(suite.repository.Delete(ctx, c.ID()), errs.ErrObjectNotFound)
}

func TestClientRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(ClientRepositoryIntegrationTestSuite))
}
