package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
)

// CreateRouteCommandHandler builds a Pending route from the eligible orders
// and links them to it. A fresh driver token is issued for the route.
type CreateRouteCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  services.RouteLifecycle
}

func NewCreateRouteCommandHandler(uowFactory UoWFactory) CreateRouteCommandHandler {
	return CreateRouteCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

// Handle creates the route. It fails with an errs.InvalidStateError when no
// candidate order can be routed.
func (h *CreateRouteCommandHandler) Handle(ctx context.Context, cmd CreateRouteCommand) error {
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

	candidates, err := uow.OrderRepository().GetMany(ctx, cmd.OrderIDs())
	if err != nil {
		return err
	}

	r, out, err := h.lifecycle.Create(cmd.RouteID(), kernel.NewToken(), candidates, time.Now().UTC())
	if err != nil {
		return err
	}

	if err = uow.RouteRepository().Add(ctx, r); err != nil {
		return err
	}
	for _, o := range out.Orders {
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
