package commands

import (
	"context"

	"lastmile/internal/core/ports"
)

// UnsubscribePushCommandHandler forgets a device. Unknown devices are ignored.
type UnsubscribePushCommandHandler struct {
	subscriptions ports.PushSubscriptionRepository
}

func NewUnsubscribePushCommandHandler(subscriptions ports.PushSubscriptionRepository) UnsubscribePushCommandHandler {
	return UnsubscribePushCommandHandler{subscriptions: subscriptions}
}

func (h *UnsubscribePushCommandHandler) Handle(ctx context.Context, cmd UnsubscribePushCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.subscriptions.DeleteByDeviceToken(ctx, cmd.DeviceToken())
}
