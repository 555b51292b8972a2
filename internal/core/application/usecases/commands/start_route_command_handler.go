package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/services"
)

// StartRouteCommandHandler activates a route, sends its first stop on the
// way and tells staff and the first customer.
type StartRouteCommandHandler struct {
	uowFactory UoWFactory
	notifier   Notifier
	lifecycle  services.RouteLifecycle
}

func NewStartRouteCommandHandler(uowFactory UoWFactory, notifier Notifier) StartRouteCommandHandler {
	return StartRouteCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *StartRouteCommandHandler) Handle(ctx context.Context, cmd StartRouteCommand) error {
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

	r, err := lockRoute(ctx, uow.RouteRepository(), cmd.Route())
	if err != nil {
		return err
	}
	p, err := loadParticipants(ctx, uow, r)
	if err != nil {
		return err
	}

	out, err := h.lifecycle.Start(r, p, time.Now().UTC())
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
