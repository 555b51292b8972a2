package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/domain/services"
)

// DeleteOrderCommandHandler deletes an order. An order on a route loses its
// stop first, which only a Pending stop allows; a route left without stops
// is deleted along with its chat.
type DeleteOrderCommandHandler struct {
	uowFactory UoWFactory
	notifier   Notifier
	lifecycle  services.RouteLifecycle
}

func NewDeleteOrderCommandHandler(uowFactory UoWFactory, notifier Notifier) DeleteOrderCommandHandler {
	return DeleteOrderCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *DeleteOrderCommandHandler) Handle(ctx context.Context, cmd DeleteOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	locks, err := lockOrder(ctx, uow, cmd.OrderID(), false)
	if err != nil {
		return err
	}

	var events []event.Event
	if r := locks.route; r != nil {
		var out services.Outcome
		if out, err = h.lifecycle.RemoveStop(r, locks.order, time.Now().UTC()); err != nil {
			return err
		}

		if len(r.Deliveries()) > 0 {
			events = out.Events
			err = uow.RouteRepository().Update(ctx, r)
		} else {
			err = dropRoute(ctx, uow, r.ID())
		}
		if err != nil {
			return err
		}
	}

	if err = uow.OrderRepository().Delete(ctx, locks.order.ID()); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notifier.Notify(ctx, events)
	return nil
}
