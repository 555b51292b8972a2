package commands

import (
	"errors"
	"strings"

	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrUnsubscribePushCommandIsNotConstructed = errors.New(
	"UnsubscribePushCommand must be created via NewUnsubscribePushCommand constructor",
)

type UnsubscribePushCommand struct { //nolint:recvcheck //using for validation
	deviceToken string

	guard guard.ConstructorGuard
}

func NewUnsubscribePushCommand(deviceToken string) (UnsubscribePushCommand, error) {
	deviceToken = strings.TrimSpace(deviceToken)
	if deviceToken == "" {
		return UnsubscribePushCommand{}, errs.NewValueIsRequiredError("deviceToken")
	}
	return UnsubscribePushCommand{deviceToken: deviceToken, guard: guard.NewConstructorGuard()}, nil
}

func (c UnsubscribePushCommand) Validate() error {
	return c.guard.Validate(ErrUnsubscribePushCommandIsNotConstructed)
}

func (c UnsubscribePushCommand) DeviceToken() string {
	return c.deviceToken
}
