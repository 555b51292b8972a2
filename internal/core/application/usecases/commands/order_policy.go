package commands

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
)

// OrderPolicy holds the shop settings applied to new and changed orders.
type OrderPolicy struct {
	// DefaultShipping is charged on Delivery orders.
	DefaultShipping kernel.Money
	// LinkTTL is how long a customer link stays valid after the order is placed.
	LinkTTL time.Duration
}
