package order

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or RestoreOrder constructors.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrItemsAreRequired is returned when a new order has no lines.
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// Order is the aggregate root of a customer purchase. It owns its items, its
// amounts and the customer link (access token plus expiration).
//
// Order follows these invariants:
//   - Total always equals Subtotal + ShippingCost
//   - PickUp orders have zero shipping and are never linked to a route
//   - An order linked to a route is InRoute, Delivered or NotDelivered
//   - The access token is issued once and never rotated
//
// The Order struct uses private fields to ensure encapsulation and maintains
// its invariants through validated methods.
type Order struct {
	id            kernel.UUID
	clientID      kernel.UUID
	routeID       *kernel.UUID
	orderType     Type
	status        Status
	subtotal      kernel.Money
	shippingCost  kernel.Money
	total         kernel.Money
	accessToken   kernel.Token
	createdAt     time.Time
	expiresAt     time.Time
	postponedAt   *time.Time
	postponedNote string
	items         []*Item
	guard         guard.ConstructorGuard
}

// NewOrder creates a Pending order.
//
// Parameters:
//   - id: unique identifier
//   - clientID: owner of the order
//   - orderType: Delivery or PickUp
//   - items: at least one line
//   - shipping: shipping cost for Delivery orders; ignored for PickUp
//   - accessToken: the customer link credential
//   - createdAt, expiresAt: link validity window
//
// Returns:
//   - *Order: the created order with Subtotal, ShippingCost and Total computed
//   - error: joined validation errors
//
// Example:
//
//	item, _ := order.NewItem(kernel.NewUUID(), "Blusa", 2, kernel.MustMoney("95"))
//	o, err := order.NewOrder(kernel.NewUUID(), clientID, order.Delivery,
//	    []*order.Item{item}, kernel.MustMoney("60"), kernel.NewToken(), now, now.Add(72*time.Hour))
//	// o.Total() == 250.00
func NewOrder(
	id kernel.UUID,
	clientID kernel.UUID,
	orderType Type,
	items []*Item,
	shipping kernel.Money,
	accessToken kernel.Token,
	createdAt time.Time,
	expiresAt time.Time,
) (*Order, error) {
	o := &Order{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if len(items) == 0 {
		return nil, ErrItemsAreRequired
	}

	if err := errors.Join(
		o.setID(id),
		o.setClientID(clientID),
		o.setType(orderType),
		o.setAccessToken(accessToken),
		o.setValidity(createdAt, expiresAt),
		o.appendItems(items),
	); err != nil {
		return nil, err
	}

	o.applyShipping(shipping)
	return o, nil
}

// Snapshot carries the persisted state of an order into RestoreOrder.
type Snapshot struct {
	ID            kernel.UUID
	ClientID      kernel.UUID
	RouteID       *kernel.UUID
	Type          Type
	Status        Status
	Subtotal      kernel.Money
	ShippingCost  kernel.Money
	Total         kernel.Money
	AccessToken   kernel.Token
	CreatedAt     time.Time
	ExpiresAt     time.Time
	PostponedAt   *time.Time
	PostponedNote string
	Items         []*Item
}

// RestoreOrder rebuilds an order from persistence. The stored amounts are
// kept as they are (imported orders may have no item lines) but must satisfy
// the total invariant.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		routeID:       s.RouteID,
		subtotal:      s.Subtotal,
		shippingCost:  s.ShippingCost,
		total:         s.Total,
		postponedAt:   s.PostponedAt,
		postponedNote: s.PostponedNote,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setClientID(s.ClientID),
		o.setType(s.Type),
		o.setStatus(s.Status),
		o.setAccessToken(s.AccessToken),
		o.setValidity(s.CreatedAt, s.ExpiresAt),
		o.setItems(s.Items),
		o.checkTotal(),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) ClientID() kernel.UUID {
	return o.clientID
}

// RouteID returns the route the order is a stop of, or nil.
func (o *Order) RouteID() *kernel.UUID {
	return o.routeID
}

func (o *Order) Type() Type {
	return o.orderType
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) Subtotal() kernel.Money {
	return o.subtotal
}

func (o *Order) ShippingCost() kernel.Money {
	return o.shippingCost
}

func (o *Order) Total() kernel.Money {
	return o.total
}

func (o *Order) AccessToken() kernel.Token {
	return o.accessToken
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) ExpiresAt() time.Time {
	return o.expiresAt
}

func (o *Order) PostponedAt() *time.Time {
	return o.postponedAt
}

func (o *Order) PostponedNote() string {
	return o.postponedNote
}

// Items returns a copy of the order lines.
func (o *Order) Items() []*Item {
	items := make([]*Item, len(o.items))
	copy(items, o.items)
	return items
}

// IsExpired reports whether the customer link has expired at now.
func (o *Order) IsExpired(now time.Time) bool {
	return now.After(o.expiresAt)
}

// CheckAccess returns an errs.ExpiredError once the customer link expired.
// Expiration is independent of delivery progress.
func (o *Order) CheckAccess(now time.Time) error {
	if o.IsExpired(now) {
		return errs.NewExpiredError("accessToken", o.accessToken.Prefix(8))
	}
	return nil
}

// AddItems merges new lines into a Pending order and recomputes the amounts.
// A client has at most one Pending order, so repeated purchases accumulate
// under the same customer link.
func (o *Order) AddItems(items []*Item) error {
	if o.status != Pending {
		return errs.NewInvalidStateError("order", fmt.Sprintf("cannot add items to a %s order", o.status))
	}
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	if err := o.appendItems(items); err != nil {
		return err
	}
	o.recalculate()
	return nil
}

// RemoveItem drops one line and recomputes the amounts from the lines left.
// Delivered orders are settled and keep their lines. An order left without
// lines goes back to Pending, unless it is still on a route: taking it off
// the route is the caller's job because the route owns the stop.
//
// Returns true when no line is left.
func (o *Order) RemoveItem(itemID kernel.UUID) (bool, error) {
	if o.status == Delivered {
		return false, errs.NewInvalidStateError("order", "delivered orders keep their items")
	}
	i := slices.IndexFunc(o.items, func(item *Item) bool { return item.ID().IsEqual(itemID) })
	if i < 0 {
		return false, errs.NewObjectNotFoundError("item", itemID.String())
	}

	o.items = slices.Delete(o.items, i, i+1)
	o.subtotal = kernel.Money{}
	for _, item := range o.items {
		o.subtotal = o.subtotal.Add(item.LineTotal())
	}
	o.recalculate()

	if len(o.items) > 0 {
		return false, nil
	}
	if o.routeID == nil {
		o.status = Pending
	}
	return true, nil
}

// AssignToRoute makes the order a stop of routeID.
//
// Business rules:
//   - PickUp orders are never routed
//   - The order must not already be linked to a route
//   - The status must be Pending, Confirmed or Shipped
func (o *Order) AssignToRoute(routeID kernel.UUID) error {
	if err := o.CheckRoutable(); err != nil {
		return err
	}
	if err := routeID.Validate(); err != nil {
		return err
	}

	status, err := o.status.AssignToRoute()
	if err != nil {
		return err
	}

	o.routeID = &routeID
	o.status = status
	return nil
}

// CheckRoutable reports why the order cannot be put on a route, if anything.
func (o *Order) CheckRoutable() error {
	if o.orderType != Delivery {
		return errs.NewInvalidStateError("order", "pick-up orders are never routed")
	}
	if o.routeID != nil {
		return errs.NewInvalidStateError("order", "order is already on a route")
	}
	if !o.status.IsRouteEligible() {
		return errs.NewInvalidStateError("order", fmt.Sprintf("%s order cannot be routed", o.status))
	}
	return nil
}

// DetachFromRoute clears the route link. Orders that were not delivered go
// back to Pending so they can be routed again.
//
// Returns true when the order was returned to the Pending pool.
func (o *Order) DetachFromRoute() bool {
	o.routeID = nil
	if o.status == Delivered {
		return false
	}
	o.status = Pending
	return true
}

// ResolveDelivery records the outcome reported for the order's stop.
func (o *Order) ResolveDelivery(outcome Status) error {
	status, err := o.status.Resolve(outcome)
	if err != nil {
		return err
	}
	o.status = status
	return nil
}

// Confirm records the customer's confirmation through their link.
func (o *Order) Confirm(now time.Time) error {
	if err := o.CheckAccess(now); err != nil {
		return err
	}

	status, err := o.status.Confirm()
	if err != nil {
		return err
	}
	o.status = status
	return nil
}

// ChangeStatus is the staff override. It returns the previous status so the
// caller can apply loyalty side effects.
func (o *Order) ChangeStatus(status Status) (Status, error) {
	if err := status.Validate(); err != nil {
		return Unknown, err
	}
	previous := o.status
	o.status = status
	return previous, nil
}

// ChangeType switches between Delivery and PickUp. PickUp orders ship for
// free; switching back to Delivery charges defaultShipping. Detaching a
// PickUp order from its route is the caller's job because the route owns the stop.
//
// Returns true when the type changed.
func (o *Order) ChangeType(orderType Type, defaultShipping kernel.Money) (bool, error) {
	if err := orderType.Validate(); err != nil {
		return false, err
	}
	if o.orderType == orderType {
		return false, nil
	}

	o.orderType = orderType
	o.applyShipping(defaultShipping)
	return true, nil
}

// Postpone stores the staff's postponement data. A nil date clears it.
func (o *Order) Postpone(at *time.Time, note string) {
	o.postponedAt = at
	o.postponedNote = strings.TrimSpace(note)
}

func (o *Order) applyShipping(shipping kernel.Money) {
	if o.orderType == PickUp {
		o.shippingCost = kernel.Money{}
	} else {
		o.shippingCost = shipping
	}
	o.total = o.subtotal.Add(o.shippingCost)
}

func (o *Order) recalculate() {
	o.total = o.subtotal.Add(o.shippingCost)
}

func (o *Order) appendItems(items []*Item) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	for _, item := range items {
		o.items = append(o.items, item)
		o.subtotal = o.subtotal.Add(item.LineTotal())
	}
	return nil
}

func (o *Order) checkTotal() error {
	if !o.total.Equal(o.subtotal.Add(o.shippingCost)) {
		return errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%s is not %s + %s", o.total, o.subtotal, o.shippingCost))
	}
	if o.orderType == PickUp && !o.shippingCost.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("shippingCost", errors.New("pick-up orders ship for free"))
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setClientID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("clientId", err)
	}
	o.clientID = id
	return nil
}

func (o *Order) setType(orderType Type) error {
	if err := orderType.Validate(); err != nil {
		return err
	}
	o.orderType = orderType
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setAccessToken(token kernel.Token) error {
	if token.IsEmpty() {
		return errs.NewValueIsRequiredError("accessToken")
	}
	o.accessToken = token
	return nil
}

func (o *Order) setValidity(createdAt, expiresAt time.Time) error {
	if expiresAt.Before(createdAt) {
		return errs.NewValueIsInvalidErrorWithCause("expiresAt", errors.New("expires before it was created"))
	}
	o.createdAt = createdAt
	o.expiresAt = expiresAt
	return nil
}

func (o *Order) setItems(items []*Item) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = make([]*Item, len(items))
	copy(o.items, items)
	return nil
}
