package order

import (
	"fmt"
	"strings"

	"lastmile/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions driven by the delivery workflow:
//
//	Pending | Confirmed | Shipped ──> InRoute ──> Delivered | NotDelivered
//	Pending | Postponed ──> Confirmed
//	InRoute ──> Pending (route canceled or stop removed)
//
// Postponed and Canceled are set by staff. Staff may also move an order to
// any valid status directly; loyalty points follow those moves.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status. Pending orders can still receive items.
	Pending

	// InRoute means the order is a stop of a delivery route.
	InRoute

	// Delivered is reached when the driver hands the order over.
	Delivered

	// NotDelivered is reached when the delivery attempt failed.
	NotDelivered

	// Canceled orders are kept for history only.
	Canceled

	// Postponed orders wait for a later date chosen with the customer.
	Postponed

	// Confirmed orders were acknowledged by the customer through their link.
	Confirmed

	// Shipped orders left the shop through a carrier or were prepared for dispatch.
	Shipped
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:      "Unknown",
		Pending:      "Pending",
		InRoute:      "InRoute",
		Delivered:    "Delivered",
		NotDelivered: "NotDelivered",
		Canceled:     "Canceled",
		Postponed:    "Postponed",
		Confirmed:    "Confirmed",
		Shipped:      "Shipped",
	}
}

// ParseStatus converts a case-insensitive name into a Status.
//
// Example:
//
//	status, err := order.ParseStatus("delivered")
//	// status == order.Delivered
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && strings.EqualFold(name, strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the status is one of the known values.
func (s Status) Validate() error {
	if s <= Unknown || s > Shipped {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the status name, or "Unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsRouteEligible reports whether an order in this status may be put on a
// new delivery route.
func (s Status) IsRouteEligible() bool {
	return s == Pending || s == Confirmed || s == Shipped
}

// AssignToRoute transitions the status to InRoute.
//
// Valid transitions:
//   - Pending, Confirmed, Shipped -> InRoute
//
// Returns:
//   - (InRoute, nil) on valid transition
//   - (0, error) wrapping errs.ErrInvalidState otherwise
func (s Status) AssignToRoute() (Status, error) {
	if !s.IsRouteEligible() {
		return 0, errs.NewInvalidStateError("order", fmt.Sprintf("%s order cannot be routed", s))
	}
	return InRoute, nil
}

// Confirm transitions the status to Confirmed.
//
// Valid transitions:
//   - Pending -> Confirmed
//   - Postponed -> Confirmed
func (s Status) Confirm() (Status, error) {
	if s != Pending && s != Postponed {
		return 0, errs.NewInvalidStateError("order", fmt.Sprintf("%s order cannot be confirmed", s))
	}
	return Confirmed, nil
}

// Resolve transitions the order to the outcome of its delivery. The driver's
// report is authoritative, so any source status is accepted; only the target
// is checked.
func (s Status) Resolve(target Status) (Status, error) {
	if target != Delivered && target != NotDelivered {
		return 0, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s is not a delivery outcome", target))
	}
	return target, nil
}
