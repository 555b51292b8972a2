package order

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when a zero-value Item is used.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is one line of an order. LineTotal is always UnitPrice * Quantity.
type Item struct {
	id        kernel.UUID
	name      string
	quantity  int
	unitPrice kernel.Money
	lineTotal kernel.Money
	guard     guard.ConstructorGuard
}

// NewItem validates a product line and computes its total.
//
// Parameters:
//   - id: line identifier
//   - name: product name, required
//   - quantity: units ordered, at least 1
//   - unitPrice: price of one unit
func NewItem(id kernel.UUID, name string, quantity int, unitPrice kernel.Money) (*Item, error) {
	item := &Item{
		unitPrice: unitPrice,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(item.setID(id), item.setName(name), item.setQuantity(quantity)); err != nil {
		return nil, err
	}

	lineTotal, err := unitPrice.Mul(quantity)
	if err != nil {
		return nil, err
	}
	item.lineTotal = lineTotal

	return item, nil
}

func (i *Item) Validate() error {
	if i == nil {
		return ErrItemIsNotConstructed
	}
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i *Item) ID() kernel.UUID {
	return i.id
}

func (i *Item) Name() string {
	return i.name
}

func (i *Item) Quantity() int {
	return i.quantity
}

func (i *Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

func (i *Item) LineTotal() kernel.Money {
	return i.lineTotal
}

func (i *Item) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Item) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("item name")
	}
	i.name = name
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}
	i.quantity = quantity
	return nil
}
