package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrReorderRouteCommandIsNotConstructed = errors.New(
	"ReorderRouteCommand must be created via NewReorderRouteCommand constructor",
)

// ReorderRouteCommand rearranges the stops of an open route. Stops not
// listed keep their relative order after the listed ones.
type ReorderRouteCommand struct { //nolint:recvcheck //using for validation
	routeID     kernel.UUID
	deliveryIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewReorderRouteCommand(routeID kernel.UUID, deliveryIDs []kernel.UUID) (ReorderRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return ReorderRouteCommand{}, err
	}
	return ReorderRouteCommand{
		routeID:     routeID,
		deliveryIDs: append([]kernel.UUID(nil), deliveryIDs...),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ReorderRouteCommand) Validate() error {
	return c.guard.Validate(ErrReorderRouteCommandIsNotConstructed)
}

func (c ReorderRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

func (c ReorderRouteCommand) DeliveryIDs() []kernel.UUID {
	return c.deliveryIDs
}
