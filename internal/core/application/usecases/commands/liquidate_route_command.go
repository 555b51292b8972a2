package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrLiquidateRouteCommandIsNotConstructed = errors.New(
	"LiquidateRouteCommand must be created via NewLiquidateRouteCommand constructor",
)

// LiquidateRouteCommand force-closes a route: every open stop counts as delivered.
type LiquidateRouteCommand struct { //nolint:recvcheck //using for validation
	routeID kernel.UUID

	guard guard.ConstructorGuard
}

func NewLiquidateRouteCommand(routeID kernel.UUID) (LiquidateRouteCommand, error) {
	if err := routeID.Validate(); err != nil {
		return LiquidateRouteCommand{}, err
	}
	return LiquidateRouteCommand{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func (c LiquidateRouteCommand) Validate() error {
	return c.guard.Validate(ErrLiquidateRouteCommandIsNotConstructed)
}

func (c LiquidateRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}
