package commands

import (
	"context"
	"time"

	"lastmile/internal/core/ports"
)

type PrunePushSubscriptionsCommandHandler struct {
	subscriptions ports.PushSubscriptionRepository
}

func NewPrunePushSubscriptionsCommandHandler(
	subscriptions ports.PushSubscriptionRepository,
) PrunePushSubscriptionsCommandHandler {
	return PrunePushSubscriptionsCommandHandler{subscriptions: subscriptions}
}

// Handle returns how many devices were removed.
func (h *PrunePushSubscriptionsCommandHandler) Handle(ctx context.Context, cmd PrunePushSubscriptionsCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	return h.subscriptions.DeleteUnusedSince(ctx, time.Now().UTC().Add(-cmd.TTL()))
}
