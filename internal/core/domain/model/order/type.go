package order

import (
	"fmt"
	"strings"

	"lastmile/internal/pkg/errs"
)

// Type tells whether the shop delivers the order or the customer picks it up.
type Type int

const (
	UnknownType Type = iota
	// Delivery orders are charged shipping and can be routed.
	Delivery
	// PickUp orders are collected at the shop, ship for free and are never routed.
	PickUp
)

// ParseType converts a case-insensitive name into a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delivery":
		return Delivery, nil
	case "pickup":
		return PickUp, nil
	default:
		return UnknownType, errs.NewValueIsInvalidErrorWithCause("orderType", fmt.Errorf("%q is not a valid order type", s))
	}
}

func (t Type) Validate() error {
	if t != Delivery && t != PickUp {
		return errs.NewValueIsInvalidErrorWithCause("orderType", fmt.Errorf("%d is not a valid order type", t))
	}
	return nil
}

func (t Type) String() string {
	switch t {
	case Delivery:
		return "Delivery"
	case PickUp:
		return "PickUp"
	default:
		return "Unknown"
	}
}
