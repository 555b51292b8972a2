package loyalty

import (
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// pointsPerUnit is the order amount that earns one point.
var pointsPerUnit = decimal.NewFromInt(10)

// referenceLength is how much of the access token labels an order in the ledger.
const referenceLength = 8

// PointsFor returns floor(total / 10): ten points per hundred currency units.
//
// Example:
//
//	loyalty.PointsFor(kernel.MustMoney("250"))    // 25
//	loyalty.PointsFor(kernel.MustMoney("99.99"))  // 9
func PointsFor(total kernel.Money) int {
	return int(total.Amount().Div(pointsPerUnit).Floor().IntPart())
}

// Accrue credits the points earned by a delivered order and promotes a Nueva
// client to Frecuente. It returns nil when the order earns no points.
//
// Accrue is not idempotent by itself: callers invoke it only when the order
// enters Delivered, which is what keeps replays from crediting twice.
func Accrue(c *client.Client, o *order.Order, now time.Time) (*Transaction, error) {
	c.PromoteToFrequent()

	points := PointsFor(o.Total())
	if points <= 0 {
		return nil, nil //nolint:nilnil // nothing to record
	}
	if err := c.Credit(points); err != nil {
		return nil, err
	}

	return NewTransaction(kernel.NewUUID(), c.ID(), points,
		fmt.Sprintf("Pedido #%s entregado", o.AccessToken().Prefix(referenceLength)), now)
}

// Reverse takes back the points of an order that left Delivered. Both
// balances are clamped at zero and the category is not rolled back. The
// amount is recomputed from the order's current total.
func Reverse(c *client.Client, o *order.Order, now time.Time) (*Transaction, error) {
	points := PointsFor(o.Total())
	if points <= 0 {
		return nil, nil //nolint:nilnil // nothing to record
	}
	if err := c.Debit(points); err != nil {
		return nil, err
	}

	return NewTransaction(kernel.NewUUID(), c.ID(), -points,
		fmt.Sprintf("Reversa pedido #%s", o.AccessToken().Prefix(referenceLength)), now)
}

// OnStatusChange is the single loyalty rule for order status changes, used
// by the driver flow, liquidation and staff overrides alike:
//   - entering Delivered accrues
//   - leaving Delivered reverses
//   - anything else is silent
func OnStatusChange(c *client.Client, o *order.Order, from, to order.Status, now time.Time) (*Transaction, error) {
	switch {
	case from != order.Delivered && to == order.Delivered:
		return Accrue(c, o, now)
	case from == order.Delivered && to != order.Delivered:
		return Reverse(c, o, now)
	default:
		return nil, nil //nolint:nilnil // no ledger movement
	}
}

// Adjust applies a manual staff adjustment and records it.
func Adjust(c *client.Client, points int, reason string, now time.Time) (*Transaction, error) {
	tx, err := NewTransaction(kernel.NewUUID(), c.ID(), points, reason, now)
	if err != nil {
		return nil, err
	}
	if err = c.Adjust(points); err != nil {
		return nil, err
	}
	return tx, nil
}
