package commands

import (
	"errors"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
		"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
	)
	ErrNothingToChange = errs.NewValueIsRequiredError("status or orderType")
)

// ChangeOrderStatusCommand is the staff override for an order: a new
// status, a new type, or both. Postponement data is stored when the new
// status is Postponed.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	status        order.Status
	orderType     order.Type
	postponedAt   *time.Time
	postponedNote string

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand builds the override. Pass order.Unknown as
// status to leave it alone, and order.UnknownType to keep the order type.
func NewChangeOrderStatusCommand(
	orderID kernel.UUID,
	status order.Status,
	orderType order.Type,
	postponedAt *time.Time,
	postponedNote string,
) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{
		postponedAt:   postponedAt,
		postponedNote: strings.TrimSpace(postponedNote),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderID.Validate(),
		cmd.setChanges(status, orderType),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	cmd.orderID = orderID
	return cmd, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Status returns the requested status, or order.Unknown when unchanged.
func (c ChangeOrderStatusCommand) Status() order.Status {
	return c.status
}

// OrderType returns the requested type, or order.UnknownType when unchanged.
func (c ChangeOrderStatusCommand) OrderType() order.Type {
	return c.orderType
}

func (c ChangeOrderStatusCommand) PostponedAt() *time.Time {
	return c.postponedAt
}

func (c ChangeOrderStatusCommand) PostponedNote() string {
	return c.postponedNote
}

func (c *ChangeOrderStatusCommand) setChanges(status order.Status, orderType order.Type) error {
	if status == order.Unknown && orderType == order.UnknownType {
		return ErrNothingToChange
	}
	if status != order.Unknown {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	if orderType != order.UnknownType {
		if err := orderType.Validate(); err != nil {
			return err
		}
	}

	c.status = status
	c.orderType = orderType
	return nil
}
