package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrUpdateClientCommandIsNotConstructed = errors.New(
	"UpdateClientCommand must be created via NewUpdateClientCommand constructor",
)

// UpdateClientCommand is the staff edit of a client's contact data and,
// optionally, its category.
type UpdateClientCommand struct { //nolint:recvcheck //using for validation
	clientID kernel.UUID
	name     string
	phone    string
	address  string
	category string

	guard guard.ConstructorGuard
}

// NewUpdateClientCommand checks the client id only; the contact rules live
// on the client. A blank category keeps the current one.
func NewUpdateClientCommand(clientID kernel.UUID, name, phone, address, category string) (UpdateClientCommand, error) {
	if err := clientID.Validate(); err != nil {
		return UpdateClientCommand{}, err
	}
	return UpdateClientCommand{
		clientID: clientID,
		name:     name,
		phone:    phone,
		address:  address,
		category: strings.TrimSpace(category),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateClientCommand) Validate() error {
	return c.guard.Validate(ErrUpdateClientCommandIsNotConstructed)
}

func (c UpdateClientCommand) ClientID() kernel.UUID {
	return c.clientID
}

func (c UpdateClientCommand) Name() string {
	return c.name
}

func (c UpdateClientCommand) Phone() string {
	return c.phone
}

func (c UpdateClientCommand) Address() string {
	return c.address
}

func (c UpdateClientCommand) Category() string {
	return c.category
}
