package commands

import (
	"errors"

	"lastmile/internal/pkg/guard"
)

var ErrStartRouteCommandIsNotConstructed = errors.New(
	"StartRouteCommand must be created via NewStartRouteCommand constructor",
)

// StartRouteCommand activates a Pending route. Staff address the route by id
// and drivers through their link.
type StartRouteCommand struct { //nolint:recvcheck //using for validation
	route RouteRef

	guard guard.ConstructorGuard
}

func NewStartRouteCommand(ref RouteRef) (StartRouteCommand, error) {
	if err := ref.Validate(); err != nil {
		return StartRouteCommand{}, err
	}
	return StartRouteCommand{route: ref, guard: guard.NewConstructorGuard()}, nil
}

func (c StartRouteCommand) Validate() error {
	return c.guard.Validate(ErrStartRouteCommandIsNotConstructed)
}

func (c StartRouteCommand) Route() RouteRef {
	return c.route
}
