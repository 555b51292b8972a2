package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/domain/model/loyalty"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
)

// ChangeOrderStatusCommandHandler applies the staff override.
//
// Switching to PickUp drops the shipping cost and removes the order's
// Pending stop from its route; a stop already in transit or resolved makes
// the change fail. Switching to Delivery charges the default shipping.
// A status change applies the loyalty rule: entering Delivered credits the
// client and leaving it debits the same points. Route stops are not touched
// by status changes. The route, client and order rows are locked first, in
// the order the route workflows use.
type ChangeOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	notifier   Notifier
	policy     OrderPolicy
	lifecycle  services.RouteLifecycle
}

func NewChangeOrderStatusCommandHandler(
	uowFactory UoWFactory,
	notifier Notifier,
	policy OrderPolicy,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		policy:     policy,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) error {
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

	now := time.Now().UTC()
	locks, err := lockOrder(ctx, uow, cmd.OrderID(), cmd.Status() != order.Unknown)
	if err != nil {
		return err
	}
	o := locks.order

	var events []event.Event
	if cmd.OrderType() != order.UnknownType {
		if events, err = h.changeType(o, locks.route, cmd.OrderType(), now); err != nil {
			return err
		}
		if locks.route != nil && o.RouteID() == nil {
			if err = uow.RouteRepository().Update(ctx, locks.route); err != nil {
				return err
			}
		}
	}

	if cmd.Status() != order.Unknown {
		if err = h.changeStatus(ctx, uow, o, locks.client, cmd, now); err != nil {
			return err
		}
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notifier.Notify(ctx, events)
	return nil
}

func (h *ChangeOrderStatusCommandHandler) changeType(
	o *order.Order,
	r *route.Route,
	orderType order.Type,
	now time.Time,
) ([]event.Event, error) {
	changed, err := o.ChangeType(orderType, h.policy.DefaultShipping)
	if err != nil || !changed || orderType != order.PickUp || r == nil {
		return nil, err
	}

	out, err := h.lifecycle.RemoveStop(r, o, now)
	if err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (h *ChangeOrderStatusCommandHandler) changeStatus(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	c *client.Client,
	cmd ChangeOrderStatusCommand,
	now time.Time,
) error {
	previous, err := o.ChangeStatus(cmd.Status())
	if err != nil {
		return err
	}
	if cmd.Status() == order.Postponed {
		o.Postpone(cmd.PostponedAt(), cmd.PostponedNote())
	}

	tx, err := loyalty.OnStatusChange(c, o, previous, cmd.Status(), now)
	if err != nil || previous == cmd.Status() {
		return err
	}

	if err = uow.ClientRepository().Update(ctx, c); err != nil {
		return err
	}
	if tx == nil {
		return nil
	}
	return uow.LoyaltyRepository().Add(ctx, tx)
}
