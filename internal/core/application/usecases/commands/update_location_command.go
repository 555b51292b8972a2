package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrUpdateLocationCommandIsNotConstructed = errors.New(
	"UpdateLocationCommand must be created via NewUpdateLocationCommand constructor",
)

// UpdateLocationCommand carries a GPS fix from the driver's phone.
type UpdateLocationCommand struct { //nolint:recvcheck //using for validation
	route RouteRef
	point kernel.GeoPoint

	guard guard.ConstructorGuard
}

func NewUpdateLocationCommand(ref RouteRef, latitude, longitude float64) (UpdateLocationCommand, error) {
	point, err := kernel.NewGeoPoint(latitude, longitude)
	if err = errors.Join(ref.Validate(), err); err != nil {
		return UpdateLocationCommand{}, err
	}
	return UpdateLocationCommand{route: ref, point: point, guard: guard.NewConstructorGuard()}, nil
}

func (c UpdateLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateLocationCommandIsNotConstructed)
}

func (c UpdateLocationCommand) Route() RouteRef {
	return c.route
}

func (c UpdateLocationCommand) Point() kernel.GeoPoint {
	return c.point
}
