package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/subscription"
	"lastmile/internal/core/ports"
)

// SubscribePushCommandHandler resolves the link token to its audience and
// upserts the device. Links are only read, so no transaction is opened.
type SubscribePushCommandHandler struct {
	uowFactory    ChatUoWFactory
	subscriptions ports.PushSubscriptionRepository
}

func NewSubscribePushCommandHandler(
	uowFactory ChatUoWFactory,
	subscriptions ports.PushSubscriptionRepository,
) SubscribePushCommandHandler {
	return SubscribePushCommandHandler{
		uowFactory:    uowFactory,
		subscriptions: subscriptions,
	}
}

func (h *SubscribePushCommandHandler) Handle(ctx context.Context, cmd SubscribePushCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	uow := h.uowFactory.Create()

	var (
		clientID   *kernel.UUID
		routeToken kernel.Token
	)
	switch cmd.Role() {
	case subscription.ClientRole:
		o, err := uow.OrderRepository().FindByAccessToken(ctx, cmd.LinkToken())
		if err != nil {
			return err
		}
		if err = o.CheckAccess(now); err != nil {
			return err
		}
		id := o.ClientID()
		clientID = &id
	case subscription.DriverRole:
		r, err := uow.RouteRepository().FindByDriverToken(ctx, cmd.LinkToken())
		if err != nil {
			return err
		}
		routeToken = r.DriverToken()
	default:
	}

	s, err := subscription.NewSubscription(kernel.NewUUID(), cmd.Role(), cmd.DeviceToken(), clientID, routeToken, now)
	if err != nil {
		return err
	}
	return h.subscriptions.Upsert(ctx, s)
}
