package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/subscription"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrSubscribePushCommandIsNotConstructed = errors.New(
	"SubscribePushCommand must be created via NewSubscribePushCommand constructor",
)

// SubscribePushCommand registers a device for push notifications. The link
// token identifies the audience: a customer access token for clients and
// the route token for drivers. Staff devices carry no token.
type SubscribePushCommand struct { //nolint:recvcheck //using for validation
	role        subscription.Role
	deviceToken string
	linkToken   kernel.Token

	guard guard.ConstructorGuard
}

func NewSubscribePushCommand(role subscription.Role, deviceToken string, linkToken kernel.Token) (SubscribePushCommand, error) {
	cmd := SubscribePushCommand{
		role:        role,
		deviceToken: strings.TrimSpace(deviceToken),
		linkToken:   linkToken,
		guard:       guard.NewConstructorGuard(),
	}

	var tokenErr, linkErr error
	if cmd.deviceToken == "" {
		tokenErr = errs.NewValueIsRequiredError("deviceToken")
	}
	switch role {
	case subscription.ClientRole, subscription.DriverRole:
		if linkToken.IsEmpty() {
			linkErr = errs.NewValueIsRequiredError("token")
		}
	case subscription.AdminRole:
	default:
		linkErr = errs.NewValueIsInvalidError("role")
	}

	if err := errors.Join(tokenErr, linkErr); err != nil {
		return SubscribePushCommand{}, err
	}
	return cmd, nil
}

func (c SubscribePushCommand) Validate() error {
	return c.guard.Validate(ErrSubscribePushCommandIsNotConstructed)
}

func (c SubscribePushCommand) Role() subscription.Role {
	return c.role
}

func (c SubscribePushCommand) DeviceToken() string {
	return c.deviceToken
}

func (c SubscribePushCommand) LinkToken() kernel.Token {
	return c.linkToken
}
