package commands

import (
	"context"
	"errors"
	"fmt"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"
)

// orderLocks holds the rows a staff edit of one order works on. route is nil
// for an order that is not on a route; client is nil unless requested.
type orderLocks struct {
	order  *order.Order
	route  *route.Route
	client *client.Client
}

// lockOrder locks the order's route, then its client when withClient is set,
// then the order itself. That is the order the route workflows lock in, so
// a staff edit and a driver report on the same stop queue instead of
// deadlocking. The route link is read without a lock first; if it changed
// before the order was locked the edit fails with errs.ConflictError.
func lockOrder(ctx context.Context, uow UoW, id kernel.UUID, withClient bool) (orderLocks, error) {
	peek, err := uow.OrderRepository().Find(ctx, id)
	if err != nil {
		return orderLocks{}, err
	}

	var locks orderLocks
	if routeID := peek.RouteID(); routeID != nil {
		locks.route, err = uow.RouteRepository().Get(ctx, *routeID)
		if errors.Is(err, errs.ErrObjectNotFound) {
			return orderLocks{}, routeMoved(id)
		}
		if err != nil {
			return orderLocks{}, err
		}
	}

	if withClient {
		if locks.client, err = uow.ClientRepository().Get(ctx, peek.ClientID()); err != nil {
			return orderLocks{}, err
		}
	}

	if locks.order, err = uow.OrderRepository().Get(ctx, id); err != nil {
		return orderLocks{}, err
	}
	if !sameRoute(peek.RouteID(), locks.order.RouteID()) {
		return orderLocks{}, routeMoved(id)
	}
	return locks, nil
}

func sameRoute(a, b *kernel.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IsEqual(*b)
}

func routeMoved(id kernel.UUID) error {
	return errs.NewConflictError("order", fmt.Errorf("order %s changed route while it was being edited", id))
}
