package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/guard"
)

var ErrGetRouteQueryIsNotConstructed = errors.New(
	"GetRouteQuery must be created via NewGetRouteQuery or NewGetDriverRouteQuery constructor",
)

// GetRouteQuery reads a route with its stops. Staff look routes up by id,
// drivers through the token of their link.
//
// Example:
//
//	query, err := NewGetDriverRouteQuery(token)
//	if err != nil {
//	    return err
//	}
//
//	view, err := handler.Handle(ctx, query)
//	for _, stop := range view.Deliveries {
//	    fmt.Printf("%d. %s (%s)\n", stop.SortOrder, stop.ClientName, stop.Status)
//	}
type GetRouteQuery struct {
	id          kernel.UUID
	driverToken kernel.Token

	guard guard.ConstructorGuard
}

func NewGetRouteQuery(id kernel.UUID) (GetRouteQuery, error) {
	if err := id.Validate(); err != nil {
		return GetRouteQuery{}, err
	}
	return GetRouteQuery{id: id, guard: guard.NewConstructorGuard()}, nil
}

func NewGetDriverRouteQuery(token kernel.Token) (GetRouteQuery, error) {
	if token.IsEmpty() {
		return GetRouteQuery{}, kernel.ErrTokenIsEmpty
	}
	return GetRouteQuery{driverToken: token, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetRouteQueryIsNotConstructed)
}

// DriverLocation is the driver's last reported position.
type DriverLocation struct {
	Latitude   float64
	Longitude  float64
	LastUpdate time.Time
}

// RouteView is a route with its stops in sort order.
type RouteView struct {
	ID          kernel.UUID
	Name        string
	DriverToken kernel.Token
	Status      route.Status
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	Location    *DriverLocation
	Deliveries  []RouteStopView
}

// RouteStopView is one stop with the customer data the driver needs.
type RouteStopView struct {
	DeliveryID    kernel.UUID
	OrderID       kernel.UUID
	SortOrder     int
	Status        route.DeliveryStatus
	ClientName    string
	ClientPhone   string
	ClientAddress string
	Total         kernel.Money
	DeliveredAt   *time.Time
	Notes         string
	FailureReason string
	EvidenceURLs  []string
}
