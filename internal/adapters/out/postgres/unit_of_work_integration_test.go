package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "lastmile/internal/adapters/out/postgres"
	"lastmile/internal/adapters/out/postgres/pgtest"
	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/loyalty"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

// UnitOfWorkIntegrationTestSuite runs the GORM unit of work against a real
// PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	factory  ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)

	suite.database = database
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(database.DB)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func (suite *UnitOfWorkIntegrationTestSuite) newClient(phone string) *client.Client {
	c, err := client.NewClient(kernel.NewUUID(), "Lucía Pérez", phone, "Av. Juárez 12")
	suite.Require().NoError(err)
	return c
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder(clientID kernel.UUID) *order.Order {
	item, err := order.NewItem(kernel.NewUUID(), "Blusa", 2, kernel.MustMoney("95"))
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), clientID, order.Delivery, []*order.Item{item},
		kernel.MustMoney("60"), kernel.NewToken(), now, now.Add(72*time.Hour))
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotNil(uow1)
	suite.NotSame(uow1, uow2)
	suite.NotNil(uow1.ClientRepository())
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.RouteRepository())
	suite.NotNil(uow1.LoyaltyRepository())
	suite.NotNil(uow1.ChatRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "begin on an open unit of work is a no-op")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Commit(ctx))
	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction, "deferred rollback after commit")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_MultiRepositoryCommit() {
	ctx := suite.T().Context()
	c := suite.newClient("5512345678")
	o := suite.newOrder(c.ID())

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.ClientRepository().Add(ctx, c))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewToken(), []kernel.UUID{o.ID()}, now)
	suite.Require().NoError(err)
	suite.Require().NoError(o.AssignToRoute(r.ID()))
	suite.Require().NoError(uow.RouteRepository().Add(ctx, r))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	gormUow, ok := uow.(*postgres_adapter.GormUnitOfWork)
	suite.Require().True(ok)
	suite.Equal(4, gormUow.TrackedCount())

	reader := suite.factory.Create()
	loaded, err := reader.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.InRoute, loaded.Status())
	suite.Require().NotNil(loaded.RouteID())
	suite.True(r.ID().IsEqual(*loaded.RouteID()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_Rollback() {
	ctx := suite.T().Context()
	c := suite.newClient("5512345678")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.ClientRepository().Add(ctx, c))
	suite.Require().NoError(c.Credit(25))
	suite.Require().NoError(uow.ClientRepository().Update(ctx, c))
	tx, err := loyalty.NewTransaction(kernel.NewUUID(), c.ID(), 25, "Compra", now)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.LoyaltyRepository().Add(ctx, tx))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err = suite.factory.Create().ClientRepository().Get(ctx, c.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)

	var count int64
	suite.Require().NoError(suite.database.DB.Table("loyalty_transactions").Count(&count).Error)
	suite.Zero(count)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RouteLockSerializesWriters() {
	ctx := suite.T().Context()
	c := suite.newClient("5512345678")
	o := suite.newOrder(c.ID())
	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewToken(), []kernel.UUID{o.ID()}, now)
	suite.Require().NoError(err)

	setup := suite.factory.Create()
	suite.Require().NoError(setup.Begin(ctx))
	suite.Require().NoError(setup.ClientRepository().Add(ctx, c))
	suite.Require().NoError(setup.OrderRepository().Add(ctx, o))
	suite.Require().NoError(setup.RouteRepository().Add(ctx, r))
	suite.Require().NoError(setup.Commit(ctx))

	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))
	locked, err := first.RouteRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)

	acquired := make(chan *route.Route, 1)
	go func() {
		second := suite.factory.Create()
		if beginErr := second.Begin(ctx); beginErr != nil {
			acquired <- nil
			return
		}
		defer func() { _ = second.Rollback(ctx) }()
		loaded, getErr := second.RouteRepository().Get(ctx, r.ID())
		if getErr != nil {
			acquired <- nil
			return
		}
		acquired <- loaded
	}()

	select {
	case <-acquired:
		suite.Fail("second reader must wait for the lock")
	case <-time.After(300 * time.Millisecond):
	}

	_, err = locked.Start(now)
	suite.Require().NoError(err)
	suite.Require().NoError(first.RouteRepository().Update(ctx, locked))
	suite.Require().NoError(first.Commit(ctx))

	select {
	case loaded := <-acquired:
		suite.Require().NotNil(loaded)
		suite.Equal(route.Active, loaded.Status(), "the waiting reader sees the committed start")
	case <-time.After(5 * time.Second):
		suite.Fail("second reader never acquired the lock")
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := suite.T().Context()
	c := suite.newClient("5512345678")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.ClientRepository().Add(ctx, c))

	loaded, err := suite.factory.Create().ClientRepository().Get(ctx, c.ID())
	suite.Require().NoError(err)
	suite.True(c.IsEqual(loaded))
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
