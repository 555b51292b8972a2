package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
)

// ResolveDeliveryCommandHandler records the driver's report for a stop.
//
// Photos are stored before the transaction opens, so a report that fails
// afterwards leaves unreferenced files behind. Repeating a report that was
// already recorded only appends its evidence.
type ResolveDeliveryCommandHandler struct {
	uowFactory UoWFactory
	evidence   ports.EvidenceStore
	notifier   Notifier
	lifecycle  services.RouteLifecycle
}

func NewResolveDeliveryCommandHandler(
	uowFactory UoWFactory,
	evidence ports.EvidenceStore,
	notifier Notifier,
) ResolveDeliveryCommandHandler {
	return ResolveDeliveryCommandHandler{
		uowFactory: uowFactory,
		evidence:   evidence,
		notifier:   notifier,
		lifecycle:  services.NewRouteLifecycle(),
	}
}

func (h *ResolveDeliveryCommandHandler) Handle(ctx context.Context, cmd ResolveDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	urls := make([]string, 0, len(cmd.Photos()))
	for _, photo := range cmd.Photos() {
		url, err := h.evidence.Save(ctx, photo.Filename, photo.Content)
		if err != nil {
			return err
		}
		urls = append(urls, url)
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

	out, err := h.lifecycle.Resolve(r, p, cmd.DeliveryID(), cmd.Outcome(urls), time.Now().UTC())
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
