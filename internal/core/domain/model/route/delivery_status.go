package route

import (
	"fmt"

	"lastmile/internal/pkg/errs"
)

// DeliveryStatus is the lifecycle of a single stop.
//
//	Pending ──> InTransit ──> Delivered | NotDelivered
//	   ^            │
//	   └────────────┘ (demoted when another stop is promoted)
//
// Delivered and NotDelivered are terminal.
type DeliveryStatus int

const (
	DeliveryUnknown DeliveryStatus = iota
	DeliveryPending
	DeliveryInTransit
	DeliveryDelivered
	DeliveryNotDelivered
)

func getDeliveryStatusStrings() map[DeliveryStatus]string {
	return map[DeliveryStatus]string{
		DeliveryUnknown:      "Unknown",
		DeliveryPending:      "Pending",
		DeliveryInTransit:    "InTransit",
		DeliveryDelivered:    "Delivered",
		DeliveryNotDelivered: "NotDelivered",
	}
}

func (s DeliveryStatus) Validate() error {
	if s <= DeliveryUnknown || s > DeliveryNotDelivered {
		return errs.NewValueIsInvalidErrorWithCause("delivery status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s DeliveryStatus) String() string {
	if str, ok := getDeliveryStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the stop was resolved.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryDelivered || s == DeliveryNotDelivered
}

// IsOpen reports whether the stop still has to be driven to.
func (s DeliveryStatus) IsOpen() bool {
	return s == DeliveryPending || s == DeliveryInTransit
}

// MarkInTransit transitions Pending to InTransit.
func (s DeliveryStatus) MarkInTransit() (DeliveryStatus, error) {
	if s != DeliveryPending {
		return 0, errs.NewInvalidStateError("delivery", fmt.Sprintf("%s delivery was already processed", s))
	}
	return DeliveryInTransit, nil
}

// Resolve transitions an open stop to a terminal outcome.
func (s DeliveryStatus) Resolve(target DeliveryStatus) (DeliveryStatus, error) {
	if !target.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause("delivery status", fmt.Errorf("%s is not an outcome", target))
	}
	if !s.IsOpen() {
		return 0, errs.NewInvalidStateError("delivery", fmt.Sprintf("%s delivery cannot become %s", s, target))
	}
	return target, nil
}
