package commands

import (
	"errors"
	"time"

	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrPrunePushSubscriptionsCommandIsNotConstructed = errors.New(
	"PrunePushSubscriptionsCommand must be created via NewPrunePushSubscriptionsCommand constructor",
)

// PrunePushSubscriptionsCommand drops devices idle for longer than ttl.
type PrunePushSubscriptionsCommand struct { //nolint:recvcheck //using for validation
	ttl time.Duration

	guard guard.ConstructorGuard
}

func NewPrunePushSubscriptionsCommand(ttl time.Duration) (PrunePushSubscriptionsCommand, error) {
	if ttl <= 0 {
		return PrunePushSubscriptionsCommand{}, errs.NewValueIsOutOfRangeError("ttl", ttl, time.Nanosecond, "unbounded")
	}
	return PrunePushSubscriptionsCommand{ttl: ttl, guard: guard.NewConstructorGuard()}, nil
}

func (c PrunePushSubscriptionsCommand) Validate() error {
	return c.guard.Validate(ErrPrunePushSubscriptionsCommandIsNotConstructed)
}

func (c PrunePushSubscriptionsCommand) TTL() time.Duration {
	return c.ttl
}
