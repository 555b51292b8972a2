package commands

import (
	"context"

	"lastmile/internal/core/domain/services"
)

// DeleteRouteCommandHandler runs the compensating procedure for a route in
// one unit of work:
//
//  1. An open route is canceled.
//  2. Every order is unlinked; orders not delivered return to Pending.
//  3. The route's chat is deleted.
//  4. Evidence, stops and the route row are deleted.
type DeleteRouteCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  services.RouteLifecycle
}

func NewDeleteRouteCommandHandler(uowFactory UoWFactory) DeleteRouteCommandHandler {
	return DeleteRouteCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *DeleteRouteCommandHandler) Handle(ctx context.Context, cmd DeleteRouteCommand) error {
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

	r, err := uow.RouteRepository().Get(ctx, cmd.RouteID())
	if err != nil {
		return err
	}
	p, err := loadParticipants(ctx, uow, r)
	if err != nil {
		return err
	}

	var out services.Outcome
	if r.Status().IsOpen() {
		out, err = h.lifecycle.Cancel(r, p)
	} else {
		out, err = h.lifecycle.Release(r, p)
	}
	if err != nil {
		return err
	}

	for _, o := range out.Orders {
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
	}
	if err = dropRoute(ctx, uow, r.ID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
