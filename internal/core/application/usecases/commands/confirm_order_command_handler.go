package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/event"
)

// ConfirmOrderCommandHandler moves a Pending or Postponed order to Confirmed
// and lets staff know. An expired link fails with errs.ExpiredError.
type ConfirmOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   Notifier
}

func NewConfirmOrderCommandHandler(uowFactory OrderUoWFactory, notifier Notifier) ConfirmOrderCommandHandler {
	return ConfirmOrderCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
	}
}

func (h *ConfirmOrderCommandHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) error {
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

	o, err := uow.OrderRepository().GetByAccessToken(ctx, cmd.AccessToken())
	if err != nil {
		return err
	}
	if err = o.Confirm(time.Now().UTC()); err != nil {
		return err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notifier.Notify(ctx, []event.Event{
		event.ForStaff(event.OrderConfirmed, event.OrderConfirmedPayload{
			OrderID: o.ID().String(),
			Total:   o.Total().String(),
		}),
	})
	return nil
}
