package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/loyalty"
)

// AdjustLoyaltyCommandHandler applies a staff correction to a client's
// balance and records it in the ledger. A negative adjustment larger than
// the current balance fails with errs.InvalidStateError.
type AdjustLoyaltyCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewAdjustLoyaltyCommandHandler(uowFactory OrderUoWFactory) AdjustLoyaltyCommandHandler {
	return AdjustLoyaltyCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h *AdjustLoyaltyCommandHandler) Handle(ctx context.Context, cmd AdjustLoyaltyCommand) error {
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
	tx, err := loyalty.Adjust(c, cmd.Points(), cmd.Reason(), time.Now().UTC())
	if err != nil {
		return err
	}

	if err = uow.ClientRepository().Update(ctx, c); err != nil {
		return err
	}
	if err = uow.LoyaltyRepository().Add(ctx, tx); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
