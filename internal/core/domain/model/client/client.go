package client

import (
	"errors"
	"fmt"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

const (
	// CategoryNew is assigned to clients created by their first order.
	CategoryNew = "Nueva"
	// CategoryFrequent is assigned once a client receives a delivered order.
	CategoryFrequent = "Frecuente"
)

var (
	// ErrNameIsRequired is returned when a client has a blank name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when a client has a blank phone.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrClientIsNotConstructed is returned when a zero-value Client is used.
	ErrClientIsNotConstructed = errors.New("Client must be created via NewClient constructor")
)

// Client is the customer aggregate. Besides contact data it carries the
// denormalised loyalty balances kept in step with the loyalty ledger.
//
// Business rules:
//   - Name and phone are required; phone identifies the client when an order is placed
//   - Balances are never negative
//   - LifetimePoints only grows through accruals and positive adjustments, and
//     shrinks only when a delivered order is reversed
//
// Example:
//
//	c, err := client.NewClient(kernel.NewUUID(), "Ana", "5551234567", "Calle 1")
//	if err != nil {
//	    return err
//	}
//	c.Credit(25)
type Client struct {
	id             kernel.UUID
	name           string
	phone          string
	address        string
	category       string
	currentPoints  int
	lifetimePoints int
	guard          guard.ConstructorGuard
}

// NewClient creates a client with the Nueva category and zero balances.
//
// Parameters:
//   - id: unique identifier
//   - name: display name, required
//   - phone: contact phone, required
//   - address: delivery address, may be empty for pick-up customers
//
// Returns:
//   - *Client: the created client
//   - error: joined validation errors
func NewClient(id kernel.UUID, name, phone, address string) (*Client, error) {
	c := &Client{
		category: CategoryNew,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setPhone(phone),
	); err != nil {
		return nil, err
	}
	c.address = strings.TrimSpace(address)

	return c, nil
}

// RestoreClient rebuilds a client from persistence without resetting its
// category or balances.
func RestoreClient(
	id kernel.UUID,
	name, phone, address, category string,
	currentPoints, lifetimePoints int,
) (*Client, error) {
	c := &Client{
		address: address,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setPhone(phone),
		c.setCategory(category),
		c.setBalances(currentPoints, lifetimePoints),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate reports whether the client was built by a constructor.
func (c *Client) Validate() error {
	if c == nil {
		return ErrClientIsNotConstructed
	}
	return c.guard.Validate(ErrClientIsNotConstructed)
}

// IsEqual compares clients by identifier.
func (c *Client) IsEqual(other *Client) bool {
	return other != nil && c.id.IsEqual(other.id)
}

func (c *Client) ID() kernel.UUID {
	return c.id
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) Phone() string {
	return c.phone
}

func (c *Client) Address() string {
	return c.address
}

// Category returns the client's tag: Nueva, Frecuente or a custom value set by staff.
func (c *Client) Category() string {
	return c.category
}

func (c *Client) CurrentPoints() int {
	return c.currentPoints
}

func (c *Client) LifetimePoints() int {
	return c.lifetimePoints
}

// UpdateContact overwrites the non-blank contact fields. It is used when a
// returning client places a new order with fresher data.
func (c *Client) UpdateContact(name, address string) {
	if name = strings.TrimSpace(name); name != "" {
		c.name = name
	}
	if address = strings.TrimSpace(address); address != "" {
		c.address = address
	}
}

// ChangeContact is the staff edit of the contact data. Every field is
// overwritten, so a blank address clears it. Name and phone stay required.
func (c *Client) ChangeContact(name, phone, address string) error {
	if err := errors.Join(requireText(name, ErrNameIsRequired), requireText(phone, ErrPhoneIsRequired)); err != nil {
		return err
	}
	_ = c.setName(name)
	_ = c.setPhone(phone)
	c.address = strings.TrimSpace(address)
	return nil
}

// Recategorize sets a staff-defined category.
func (c *Client) Recategorize(category string) error {
	return c.setCategory(category)
}

// PromoteToFrequent moves a Nueva client to Frecuente. Custom categories
// assigned by staff are left alone.
//
// Returns true when the category changed.
func (c *Client) PromoteToFrequent() bool {
	if c.category != CategoryNew {
		return false
	}
	c.category = CategoryFrequent
	return true
}

// Credit adds points to both balances.
func (c *Client) Credit(points int) error {
	if points <= 0 {
		return errs.NewValueIsOutOfRangeError("points", points, 1, "unbounded")
	}
	c.currentPoints += points
	c.lifetimePoints += points
	return nil
}

// Debit removes points from both balances, clamping each at zero. It is
// used to reverse an accrual, so the points may already have been spent.
func (c *Client) Debit(points int) error {
	if points <= 0 {
		return errs.NewValueIsOutOfRangeError("points", points, 1, "unbounded")
	}
	c.currentPoints = max(c.currentPoints-points, 0)
	c.lifetimePoints = max(c.lifetimePoints-points, 0)
	return nil
}

// Adjust applies a manual staff adjustment. Positive adjustments also raise
// the lifetime balance; negative ones may not overdraw the current balance.
func (c *Client) Adjust(points int) error {
	if points == 0 {
		return errs.NewValueIsInvalidErrorWithCause("points", errors.New("adjustment must not be zero"))
	}
	if c.currentPoints+points < 0 {
		return errs.NewInvalidStateError("client",
			fmt.Sprintf("has %d points, cannot subtract %d", c.currentPoints, -points))
	}

	c.currentPoints += points
	if points > 0 {
		c.lifetimePoints += points
	}
	return nil
}

func requireText(value string, err error) error {
	if strings.TrimSpace(value) == "" {
		return err
	}
	return nil
}

func (c *Client) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Client) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Client) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneIsRequired
	}
	c.phone = phone
	return nil
}

func (c *Client) setCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return errs.NewValueIsRequiredError("category")
	}
	c.category = category
	return nil
}

func (c *Client) setBalances(current, lifetime int) error {
	if current < 0 {
		return errs.NewValueIsOutOfRangeError("currentPoints", current, 0, "unbounded")
	}
	if lifetime < 0 {
		return errs.NewValueIsOutOfRangeError("lifetimePoints", lifetime, 0, "unbounded")
	}
	c.currentPoints = current
	c.lifetimePoints = lifetime
	return nil
}
