package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/services"
)

// LiquidateRouteCommandHandler completes a route on staff request. Orders
// still in route become Delivered and their clients earn points.
type LiquidateRouteCommandHandler struct {
	uowFactory UoWFactory
	notifier   Notifier
	lifecycle  services.RouteLifecycle
}

func NewLiquidateRouteCommandHandler(uowFactory UoWFactory, notifier Notifier) LiquidateRouteCommandHandler {
	return LiquidateRouteCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *LiquidateRouteCommandHandler) Handle(ctx context.Context, cmd LiquidateRouteCommand) error {
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

	out, err := h.lifecycle.Liquidate(r, p, time.Now().UTC())
	if err != nil {
		return err
	}
	if err = saveOutcome(ctx, uow, r, out); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notifier.Notify(ctx, out.Events)
	return nil
}
