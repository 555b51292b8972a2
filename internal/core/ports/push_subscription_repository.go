package ports

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/subscription"
)

// PushSubscriptionRepository stores device registrations. It works outside
// the unit of work: subscriptions are touched and pruned by the
// notification dispatcher after the business transaction committed.
type PushSubscriptionRepository interface {
	// Upsert registers the device, replacing any binding of the same device token.
	Upsert(ctx context.Context, s *subscription.Subscription) error

	// DeleteByDeviceToken removes a device. Removing an unknown device is not an error.
	DeleteByDeviceToken(ctx context.Context, deviceToken string) error

	// FindByClient returns the devices of a client.
	FindByClient(ctx context.Context, clientID kernel.UUID) ([]*subscription.Subscription, error)

	// FindByRouteToken returns the devices of the driver holding token.
	FindByRouteToken(ctx context.Context, token kernel.Token) ([]*subscription.Subscription, error)

	// FindByRole returns every device registered with role.
	FindByRole(ctx context.Context, role subscription.Role) ([]*subscription.Subscription, error)

	// Touch sets lastUsedAt on the given devices.
	Touch(ctx context.Context, deviceTokens []string, at time.Time) error

	// DeleteUnusedSince removes devices not used since cutoff and returns how many were removed.
	DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int64, error)
}
