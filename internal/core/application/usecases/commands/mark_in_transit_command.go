package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrMarkInTransitCommandIsNotConstructed = errors.New(
	"MarkInTransitCommand must be created via NewMarkInTransitCommand constructor",
)

// MarkInTransitCommand sends the driver to a specific stop.
type MarkInTransitCommand struct { //nolint:recvcheck //using for validation
	route      RouteRef
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

func NewMarkInTransitCommand(ref RouteRef, deliveryID kernel.UUID) (MarkInTransitCommand, error) {
	if err := errors.Join(ref.Validate(), deliveryID.Validate()); err != nil {
		return MarkInTransitCommand{}, err
	}
	return MarkInTransitCommand{
		route:      ref,
		deliveryID: deliveryID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c MarkInTransitCommand) Validate() error {
	return c.guard.Validate(ErrMarkInTransitCommandIsNotConstructed)
}

func (c MarkInTransitCommand) Route() RouteRef {
	return c.route
}

func (c MarkInTransitCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}
