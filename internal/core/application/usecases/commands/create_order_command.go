package commands

import (
	"errors"
	"fmt"
	"strings"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// ItemLine is one purchased line of a new order.
type ItemLine struct {
	Name      string
	Quantity  int
	UnitPrice kernel.Money
}

// CreateOrderCommand places an order for the client identified by phone.
// A returning client with a Pending order gets the lines appended to it.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "Lucía Pérez", "5512345678",
//	    "Av. Juárez 12", order.Delivery,
//	    []ItemLine{{Name: "Blusa", Quantity: 2, UnitPrice: kernel.MustMoney("95")}})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	placed, err := handler.Handle(ctx, cmd)
//	// placed.AccessToken is the customer link
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	name      string
	phone     string
	address   string
	orderType order.Type
	items     []ItemLine

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID kernel.UUID,
	name string,
	phone string,
	address string,
	orderType order.Type,
	items []ItemLine,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		name:    strings.TrimSpace(name),
		address: strings.TrimSpace(address),
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setPhone(phone),
		cmd.setOrderType(orderType),
		cmd.setItems(items),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID is used only when a new order has to be opened.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Name() string {
	return c.name
}

func (c CreateOrderCommand) Phone() string {
	return c.phone
}

func (c CreateOrderCommand) Address() string {
	return c.address
}

func (c CreateOrderCommand) OrderType() order.Type {
	return c.orderType
}

func (c CreateOrderCommand) Items() []ItemLine {
	return c.items
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return client.ErrPhoneIsRequired
	}

	c.phone = phone
	return nil
}

func (c *CreateOrderCommand) setOrderType(orderType order.Type) error {
	if err := orderType.Validate(); err != nil {
		return err
	}

	c.orderType = orderType
	return nil
}

func (c *CreateOrderCommand) setItems(items []ItemLine) error {
	if len(items) == 0 {
		return order.ErrItemsAreRequired
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return errs.NewValueIsRequiredError(fmt.Sprintf("items[%d].name", i))
		}
		if item.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError(fmt.Sprintf("items[%d].quantity", i), item.Quantity, 1, "unbounded")
		}
	}

	c.items = items
	return nil
}
