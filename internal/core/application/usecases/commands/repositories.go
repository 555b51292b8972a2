// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// persistence and, after commit, notification.
package commands

import (
	"context"

	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	ClientRepoFactory interface {
		ClientRepository() ports.ClientRepository
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	RouteRepoFactory interface {
		RouteRepository() ports.RouteRepository
	}

	LoyaltyRepoFactory interface {
		LoyaltyRepository() ports.LoyaltyRepository
	}

	ChatRepoFactory interface {
		ChatRepository() ports.ChatRepository
	}

	// OrderUoW manages transactions for order placement and the client's
	// loyalty balance. No route is touched.
	OrderUoW interface {
		TxManager
		ClientRepoFactory
		OrderRepoFactory
		LoyaltyRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// ChatUoW manages transactions that append chat messages. Routes and
	// orders are only read.
	ChatUoW interface {
		TxManager
		RouteRepoFactory
		OrderRepoFactory
		ChatRepoFactory
	}

	// ChatUoWFactory creates new chat unit of work instances.
	ChatUoWFactory interface {
		Create() ChatUoW
	}

	// UoW manages transactions across routes, orders, clients and the
	// loyalty ledger. Used by every route workflow command.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   r, err := uow.RouteRepository().Get(ctx, routeID) // locked until commit
	//   orders, err := uow.OrderRepository().GetMany(ctx, r.OrderIDs())
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		ClientRepoFactory
		OrderRepoFactory
		RouteRepoFactory
		LoyaltyRepoFactory
		ChatRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// Notifier hands the events of a committed command to the notification
// fan-out. It never fails the command: delivery problems are the
// notifier's to log.
type Notifier interface {
	Notify(ctx context.Context, events []event.Event)
}
