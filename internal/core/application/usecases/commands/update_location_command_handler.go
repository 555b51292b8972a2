package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/services"
)

// UpdateLocationCommandHandler stores the driver's position and broadcasts it.
//
// Position updates are last-write-wins and run without a transaction: they
// neither take nor wait for the route lock, so a busy route never delays GPS.
type UpdateLocationCommandHandler struct {
	uowFactory UoWFactory
	notifier   Notifier
	lifecycle  services.RouteLifecycle
}

func NewUpdateLocationCommandHandler(uowFactory UoWFactory, notifier Notifier) UpdateLocationCommandHandler {
	return UpdateLocationCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *UpdateLocationCommandHandler) Handle(ctx context.Context, cmd UpdateLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()

	r, err := findRoute(ctx, uow.RouteRepository(), cmd.Route())
	if err != nil {
		return err
	}
	orders, err := uow.OrderRepository().GetMany(ctx, r.OrderIDs())
	if err != nil {
		return err
	}

	out, err := h.lifecycle.UpdateLocation(r, services.NewParticipants(orders, nil), cmd.Point(), time.Now().UTC())
	if err != nil {
		return err
	}
	if err = uow.RouteRepository().UpdateLocation(ctx, r); err != nil {
		return err
	}

	h.notifier.Notify(ctx, out.Events)
	return nil
}
