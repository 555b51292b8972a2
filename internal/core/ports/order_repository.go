package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates,
// items included.
//
// The Get methods lock the rows they return until the unit of work ends;
// Update writes whole rows, so an order must be read through them before it
// is written back. Callers lock a route before the orders on it and those
// orders before their clients; an order outside a locked route is locked
// after its client.
type OrderRepository interface {
	// Add persists a new order with its items.
	// Returns errs.ConflictError when the access token is already taken.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status, amounts, route link and the item lines,
	// deleting lines the aggregate no longer has.
	Update(ctx context.Context, aggregate *order.Order) error

	// Delete removes an order with its item lines.
	Delete(ctx context.Context, id kernel.UUID) error

	// Get retrieves and locks an order by its identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByAccessToken retrieves and locks the order behind a customer link.
	GetByAccessToken(ctx context.Context, token kernel.Token) (*order.Order, error)

	// Find retrieves an order without locking it. The result must not be
	// written back with Update.
	Find(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// FindByAccessToken retrieves the order behind a customer link without locking it.
	FindByAccessToken(ctx context.Context, token kernel.Token) (*order.Order, error)

	// GetMany retrieves and locks the orders with the given ids, keeping the
	// caller's sequence. Rows are locked in id order. Unknown ids are skipped.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)

	// GetPendingByClient retrieves and locks the client's open Pending order,
	// which absorbs new purchases. Returns errs.ObjectNotFoundError when there is none.
	GetPendingByClient(ctx context.Context, clientID kernel.UUID) (*order.Order, error)

	// CountByClient returns how many orders reference the client.
	CountByClient(ctx context.Context, clientID kernel.UUID) (int64, error)
}
