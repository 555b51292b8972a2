package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrConfirmOrderCommandIsNotConstructed = errors.New(
	"ConfirmOrderCommand must be created via NewConfirmOrderCommand constructor",
)

// ConfirmOrderCommand is the customer's confirmation sent through their link.
type ConfirmOrderCommand struct { //nolint:recvcheck //using for validation
	accessToken kernel.Token

	guard guard.ConstructorGuard
}

func NewConfirmOrderCommand(accessToken kernel.Token) (ConfirmOrderCommand, error) {
	if accessToken.IsEmpty() {
		return ConfirmOrderCommand{}, kernel.ErrTokenIsEmpty
	}
	return ConfirmOrderCommand{accessToken: accessToken, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmOrderCommand) Validate() error {
	return c.guard.Validate(ErrConfirmOrderCommandIsNotConstructed)
}

func (c ConfirmOrderCommand) AccessToken() kernel.Token {
	return c.accessToken
}
