package commands

import (
	"context"
)

// UpdateClientCommandHandler stores a staff edit of a client. A phone
// already registered to another client fails with errs.ConflictError.
type UpdateClientCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewUpdateClientCommandHandler(uowFactory OrderUoWFactory) UpdateClientCommandHandler {
	return UpdateClientCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h *UpdateClientCommandHandler) Handle(ctx context.Context, cmd UpdateClientCommand) error {
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

	c, err := uow.ClientRepository().Get(ctx, cmd.ClientID())
	if err != nil {
		return err
	}
	if err = c.ChangeContact(cmd.Name(), cmd.Phone(), cmd.Address()); err != nil {
		return err
	}
	if cmd.Category() != "" {
		if err = c.Recategorize(cmd.Category()); err != nil {
			return err
		}
	}

	if err = uow.ClientRepository().Update(ctx, c); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
