package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/services"
)

// MarkInTransitCommandHandler promotes a stop to InTransit. Any other stop in
// transit goes back to the queue and its customer is told so.
type MarkInTransitCommandHandler struct {
	uowFactory UoWFactory
	notifier   Notifier
	lifecycle  services.RouteLifecycle
}

func NewMarkInTransitCommandHandler(uowFactory UoWFactory, notifier Notifier) MarkInTransitCommandHandler {
	return MarkInTransitCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *MarkInTransitCommandHandler) Handle(ctx context.Context, cmd MarkInTransitCommand) error {
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

	out, err := h.lifecycle.MarkInTransit(r, p, cmd.DeliveryID(), time.Now().UTC())
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
