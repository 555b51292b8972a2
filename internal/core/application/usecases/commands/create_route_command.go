package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	ErrCreateRouteCommandIsNotConstructed = errors.New(
		"CreateRouteCommand must be created via NewCreateRouteCommand constructor",
	)
	ErrOrderIDsAreRequired = errs.NewValueIsRequiredError("orderIds")
)

// CreateRouteCommand asks for a new route over the given orders, in driving
// order. Orders that are not eligible are skipped when the route is built.
//
// Example:
//
//	routeID := kernel.NewUUID()
//	cmd, err := NewCreateRouteCommand(routeID, []kernel.UUID{first, second})
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type CreateRouteCommand struct { //nolint:recvcheck //using for validation
	routeID  kernel.UUID
	orderIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewCreateRouteCommand(routeID kernel.UUID, orderIDs []kernel.UUID) (CreateRouteCommand, error) {
	cmd := CreateRouteCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRouteID(routeID),
		cmd.setOrderIDs(orderIDs),
	); err != nil {
		return CreateRouteCommand{}, err
	}

	return cmd, nil
}

func (c CreateRouteCommand) Validate() error {
	return c.guard.Validate(ErrCreateRouteCommandIsNotConstructed)
}

func (c CreateRouteCommand) RouteID() kernel.UUID {
	return c.routeID
}

// OrderIDs returns the candidate orders in driving order.
func (c CreateRouteCommand) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, len(c.orderIDs))
	copy(ids, c.orderIDs)
	return ids
}

func (c *CreateRouteCommand) setRouteID(routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	c.routeID = routeID
	return nil
}

func (c *CreateRouteCommand) setOrderIDs(orderIDs []kernel.UUID) error {
	if len(orderIDs) == 0 {
		return ErrOrderIDsAreRequired
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
	}
	c.orderIDs = append([]kernel.UUID(nil), orderIDs...)
	return nil
}
