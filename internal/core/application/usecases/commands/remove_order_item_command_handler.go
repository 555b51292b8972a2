package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/services"
)

// RemoveOrderItemCommandHandler drops one line of an order and recomputes
// its amounts. An order left without lines returns to Pending; if it was on
// a route its stop is removed first, which only a Pending stop allows.
type RemoveOrderItemCommandHandler struct {
	uowFactory UoWFactory
	notifier   Notifier
	lifecycle  services.RouteLifecycle
}

func NewRemoveOrderItemCommandHandler(uowFactory UoWFactory, notifier Notifier) RemoveOrderItemCommandHandler {
	return RemoveOrderItemCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *RemoveOrderItemCommandHandler) Handle(ctx context.Context, cmd RemoveOrderItemCommand) error {
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
	o := locks.order

	emptied, err := o.RemoveItem(cmd.ItemID())
	if err != nil {
		return err
	}

	var out services.Outcome
	if r := locks.route; emptied && r != nil {
		if out, err = h.lifecycle.RemoveStop(r, o, time.Now().UTC()); err != nil {
			return err
		}
		if err = uow.RouteRepository().Update(ctx, r); err != nil {
			return err
		}
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notifier.Notify(ctx, out.Events)
	return nil
}
