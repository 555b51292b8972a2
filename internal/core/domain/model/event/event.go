// Package event describes the notifications produced by state changes.
//
// Events are plain values. Domain services return them next to the new state
// and the notification dispatcher delivers them after the unit of work
// commits, so a delivery failure never rolls anything back.
package event

import (
	"lastmile/internal/core/domain/model/kernel"
)

// Type names the message a subscriber receives.
type Type string

const (
	DeliveryUpdate           Type = "DeliveryUpdate"
	LocationUpdate           Type = "LocationUpdate"
	DriverLocation           Type = "DriverLocation"
	RouteStarted             Type = "RouteStarted"
	RouteCompleted           Type = "RouteCompleted"
	DeliveryInTransit        Type = "DeliveryInTransit"
	DeliveryCompleted        Type = "DeliveryCompleted"
	DeliveryFailed           Type = "DeliveryFailed"
	ReceiveChatMessage       Type = "ReceiveChatMessage"
	ReceiveClientChatMessage Type = "ReceiveClientChatMessage"
	OrderConfirmed           Type = "OrderConfirmed"
)

// Audience is the kind of subscriber an event is addressed to.
type Audience int

const (
	UnknownAudience Audience = iota
	Customer
	Driver
	Staff
)

func (a Audience) String() string {
	switch a {
	case Customer:
		return "customer"
	case Driver:
		return "driver"
	case Staff:
		return "staff"
	default:
		return "unknown"
	}
}

// Group key prefixes. A customer listens on order_<accessToken>, a driver on
// Route_<driverToken> and staff on admin.
const (
	customerPrefix = "order_"
	driverPrefix   = "Route_"
	StaffKey       = "admin"
)

// CustomerKey is the real-time group of an order's customer.
func CustomerKey(accessToken kernel.Token) string {
	return customerPrefix + accessToken.String()
}

// DriverKey is the real-time group of a route's driver.
func DriverKey(driverToken kernel.Token) string {
	return driverPrefix + driverToken.String()
}

// Push is the optional mobile notification attached to an event. The
// dispatcher resolves devices from the event audience and the identity below.
type Push struct {
	Title string
	Body  string
	Link  string
	// ClientID selects client devices for customer events.
	ClientID *kernel.UUID
	// RouteToken selects driver devices for driver events.
	RouteToken kernel.Token
}

// Event is one message for one audience group.
type Event struct {
	Type     Type
	Audience Audience
	Key      string
	Payload  any
	Push     *Push
}

// ForCustomer addresses the customer holding accessToken.
func ForCustomer(accessToken kernel.Token, t Type, payload any) Event {
	return Event{Type: t, Audience: Customer, Key: CustomerKey(accessToken), Payload: payload}
}

// ForDriver addresses the driver holding driverToken.
func ForDriver(driverToken kernel.Token, t Type, payload any) Event {
	return Event{Type: t, Audience: Driver, Key: DriverKey(driverToken), Payload: payload}
}

// ForStaff addresses every staff session.
func ForStaff(t Type, payload any) Event {
	return Event{Type: t, Audience: Staff, Key: StaffKey, Payload: payload}
}

// WithPush returns a copy of e that is also sent as a push notification.
func (e Event) WithPush(p Push) Event {
	e.Push = &p
	return e
}
