package commands

import (
	"context"
)

type ReorderRouteCommandHandler struct {
	uowFactory UoWFactory
}

func NewReorderRouteCommandHandler(uowFactory UoWFactory) ReorderRouteCommandHandler {
	return ReorderRouteCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle reassigns sort orders 1..N. An id that is not a stop of the route
// fails the whole command with errs.ObjectNotFoundError.
func (h *ReorderRouteCommandHandler) Handle(ctx context.Context, cmd ReorderRouteCommand) error {
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
	if err = r.Reorder(cmd.DeliveryIDs()); err != nil {
		return err
	}
	if err = uow.RouteRepository().Update(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
