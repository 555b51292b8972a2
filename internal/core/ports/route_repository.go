package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
)

// RouteRepository defines the persistence contract for route aggregates,
// their stops and evidence.
//
// Reads made inside a unit of work lock the route row FOR UPDATE, so commands
// working on the same route run one after the other.
type RouteRepository interface {
	// Add persists a new route with its stops.
	// Returns errs.ConflictError when the driver token is already taken.
	Add(ctx context.Context, aggregate *route.Route) error

	// Update persists the route status, the stops and their evidence.
	// Stops removed from the aggregate are deleted.
	Update(ctx context.Context, aggregate *route.Route) error

	// UpdateLocation persists only the driver position. It takes no lock;
	// position updates are last-write-wins.
	UpdateLocation(ctx context.Context, aggregate *route.Route) error

	// Get retrieves and locks a route by its identifier.
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// GetByDriverToken retrieves and locks the route behind a driver link.
	GetByDriverToken(ctx context.Context, token kernel.Token) (*route.Route, error)

	// Find retrieves a route without locking it. The result must not be
	// written back with Update.
	Find(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// FindByDriverToken retrieves the route behind a driver link without locking it.
	FindByDriverToken(ctx context.Context, token kernel.Token) (*route.Route, error)

	// Delete removes the route together with its stops and their evidence.
	Delete(ctx context.Context, id kernel.UUID) error
}
