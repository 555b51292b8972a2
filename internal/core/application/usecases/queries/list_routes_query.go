// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases and read the
// tables directly instead of loading aggregates.
package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/guard"
)

var ErrListRoutesQueryIsNotConstructed = errors.New(
	"ListRoutesQuery must be created via NewListRoutesQuery constructor",
)

// ListRoutesQuery lists routes for the staff dashboard, newest first.
// With openOnly set, completed and canceled routes are left out.
type ListRoutesQuery struct {
	openOnly bool

	guard guard.ConstructorGuard
}

func NewListRoutesQuery(openOnly bool) ListRoutesQuery {
	return ListRoutesQuery{openOnly: openOnly, guard: guard.NewConstructorGuard()}
}

func (q ListRoutesQuery) Validate() error {
	return q.guard.Validate(ErrListRoutesQueryIsNotConstructed)
}

func (q ListRoutesQuery) OpenOnly() bool {
	return q.openOnly
}

// RouteSummary is one row of the route list with stop counters.
type RouteSummary struct {
	ID              kernel.UUID
	Name            string
	DriverToken     kernel.Token
	Status          route.Status
	CreatedAt       time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	TotalDeliveries int
	Delivered       int
	Failed          int
}
