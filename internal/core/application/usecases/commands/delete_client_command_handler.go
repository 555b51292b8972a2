package commands

import (
	"context"
	"fmt"

	"lastmile/internal/pkg/errs"
)

// DeleteClientCommandHandler removes a client that no order references.
type DeleteClientCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewDeleteClientCommandHandler(uowFactory OrderUoWFactory) DeleteClientCommandHandler {
	return DeleteClientCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h *DeleteClientCommandHandler) Handle(ctx context.Context, cmd DeleteClientCommand) error {
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

	count, err := uow.OrderRepository().CountByClient(ctx, cmd.ClientID())
	if err != nil {
		return err
	}
	if count > 0 {
		return errs.NewInvalidStateError("client", fmt.Sprintf("%d orders still reference the client", count))
	}

	if err = uow.ClientRepository().Delete(ctx, cmd.ClientID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
