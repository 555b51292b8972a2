package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/guard"
)

var ErrGetCustomerViewQueryIsNotConstructed = errors.New(
	"GetCustomerViewQuery must be created via NewGetCustomerViewQuery constructor",
)

// StatusInTransit is the status shown to a customer while their stop is
// the one the driver is heading to. The order itself still reads InRoute.
const StatusInTransit = "InTransit"

// GetCustomerViewQuery reads what the customer sees behind their link.
type GetCustomerViewQuery struct {
	accessToken kernel.Token

	guard guard.ConstructorGuard
}

func NewGetCustomerViewQuery(accessToken kernel.Token) (GetCustomerViewQuery, error) {
	if accessToken.IsEmpty() {
		return GetCustomerViewQuery{}, kernel.ErrTokenIsEmpty
	}
	return GetCustomerViewQuery{accessToken: accessToken, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCustomerViewQuery) Validate() error {
	return q.guard.Validate(ErrGetCustomerViewQueryIsNotConstructed)
}

func (q GetCustomerViewQuery) AccessToken() kernel.Token {
	return q.accessToken
}

// CustomerView is the customer's order page.
//
// The queue fields are set only while the order is on a route:
// QueuePosition is the stop's sort order, TotalDeliveries the number of
// stops and DeliveriesAhead the Pending or InTransit stops sorted before it.
// DriverLocation is only shared while this stop is in transit on an
// active route.
type CustomerView struct {
	OrderID           kernel.UUID
	ClientName        string
	OrderType         order.Type
	Status            string
	Items             []CustomerItemView
	Subtotal          kernel.Money
	ShippingCost      kernel.Money
	Total             kernel.Money
	ExpiresAt         time.Time
	QueuePosition     *int
	TotalDeliveries   *int
	DeliveriesAhead   *int
	IsCurrentDelivery bool
	DriverLocation    *DriverLocation
}

type CustomerItemView struct {
	Name      string
	Quantity  int
	UnitPrice kernel.Money
	LineTotal kernel.Money
}
