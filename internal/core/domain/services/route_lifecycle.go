package services

import (
	"time"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/event"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/loyalty"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"
)

const customerLinkPrefix = "/pedido/"

// Participants are the aggregates a route operation may touch besides the
// route itself: the orders behind its stops and their clients, keyed by id.
type Participants struct {
	Orders  map[kernel.UUID]*order.Order
	Clients map[kernel.UUID]*client.Client
}

// NewParticipants indexes orders and clients by id.
func NewParticipants(orders []*order.Order, clients []*client.Client) Participants {
	p := Participants{
		Orders:  make(map[kernel.UUID]*order.Order, len(orders)),
		Clients: make(map[kernel.UUID]*client.Client, len(clients)),
	}
	for _, o := range orders {
		p.Orders[o.ID()] = o
	}
	for _, c := range clients {
		p.Clients[c.ID()] = c
	}
	return p
}

func (p Participants) order(id kernel.UUID) (*order.Order, error) {
	o, ok := p.Orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return o, nil
}

func (p Participants) client(id kernel.UUID) (*client.Client, error) {
	c, ok := p.Clients[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("client", id.String())
	}
	return c, nil
}

// Outcome is everything a route operation changed besides the route. The
// caller persists Orders, Clients, Ledger and Evidence in the same unit of
// work and hands Events to the dispatcher after commit.
type Outcome struct {
	Events   []event.Event
	Ledger   []*loyalty.Transaction
	Orders   []*order.Order
	Clients  []*client.Client
	Evidence []*route.Evidence
	// NextDeliveryID is the stop that became InTransit, if any.
	NextDeliveryID *kernel.UUID
	// Replayed is set when a terminal report was repeated.
	Replayed bool
}

func (o *Outcome) touchOrder(ord *order.Order) {
	for _, known := range o.Orders {
		if known == ord {
			return
		}
	}
	o.Orders = append(o.Orders, ord)
}

func (o *Outcome) touchClient(c *client.Client) {
	for _, known := range o.Clients {
		if known == c {
			return
		}
	}
	o.Clients = append(o.Clients, c)
}

// RouteLifecycle drives a route and the orders on it through the delivery
// workflow. It is pure: it mutates the aggregates it is given and reports
// what changed, leaving persistence and delivery of events to the caller.
//
// Key responsibilities:
//   - Keeping order statuses in step with their stops
//   - Applying the loyalty rule when an order enters or leaves Delivered
//   - Producing the customer, driver and staff notifications
//
// Example:
//
//	lc := services.NewRouteLifecycle()
//	out, err := lc.Resolve(r, participants, deliveryID, route.DeliveredOutcome("", urls), now)
//	if err != nil {
//	    return err
//	}
//	// persist r, out.Orders, out.Clients, out.Ledger, out.Evidence; then dispatch out.Events
type RouteLifecycle struct{}

func NewRouteLifecycle() RouteLifecycle {
	return RouteLifecycle{}
}

// Create builds a Pending route from the eligible orders among candidates,
// keeping their sequence, and links those orders to it. Ineligible orders
// are skipped silently.
//
// Returns:
//   - *route.Route: the new route
//   - Outcome: Orders lists the routed orders
//   - error: route.ErrNoEligibleOrders when nothing qualifies
func (l RouteLifecycle) Create(
	routeID kernel.UUID,
	driverToken kernel.Token,
	candidates []*order.Order,
	now time.Time,
) (*route.Route, Outcome, error) {
	eligible := make([]*order.Order, 0, len(candidates))
	ids := make([]kernel.UUID, 0, len(candidates))
	seen := make(map[kernel.UUID]struct{}, len(candidates))
	for _, o := range candidates {
		if _, dup := seen[o.ID()]; dup || o.CheckRoutable() != nil {
			continue
		}
		seen[o.ID()] = struct{}{}
		eligible = append(eligible, o)
		ids = append(ids, o.ID())
	}

	r, err := route.NewRoute(routeID, driverToken, ids, now)
	if err != nil {
		return nil, Outcome{}, err
	}

	var out Outcome
	for _, o := range eligible {
		if err = o.AssignToRoute(routeID); err != nil {
			return nil, Outcome{}, err
		}
		out.touchOrder(o)
	}
	return r, out, nil
}

// Start activates the route and sends the first stop on its way.
func (l RouteLifecycle) Start(r *route.Route, p Participants, now time.Time) (Outcome, error) {
	tr, err := r.Start(now)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Events: []event.Event{
		event.ForStaff(event.RouteStarted, event.RoutePayload{RouteID: r.ID().String()}),
	}}
	if err = l.apply(r, p, tr, &out); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// MarkInTransit sends the driver to a specific stop.
func (l RouteLifecycle) MarkInTransit(r *route.Route, p Participants, deliveryID kernel.UUID, now time.Time) (Outcome, error) {
	tr, err := r.MarkInTransit(deliveryID)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if err = l.apply(r, p, tr, &out); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Resolve records a delivered or failed stop, updates its order, applies the
// loyalty rule and advances the route. A repeated report only appends evidence.
func (l RouteLifecycle) Resolve(
	r *route.Route,
	p Participants,
	deliveryID kernel.UUID,
	outcome route.Outcome,
	now time.Time,
) (Outcome, error) {
	tr, err := r.Resolve(deliveryID, outcome, now)
	if err != nil {
		return Outcome{}, err
	}
	if tr.Replayed {
		return Outcome{Evidence: tr.Evidence, Replayed: true}, nil
	}

	out := Outcome{Evidence: tr.Evidence}
	d := tr.Resolved
	o, err := p.order(d.OrderID())
	if err != nil {
		return Outcome{}, err
	}

	target := order.Delivered
	if d.Status() == route.DeliveryNotDelivered {
		target = order.NotDelivered
	}
	if err = l.resolveOrder(o, target, p, now, &out); err != nil {
		return Outcome{}, err
	}

	out.Events = append(out.Events, l.resolvedEvents(d, o)...)
	if err = l.apply(r, p, tr, &out); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Liquidate force-completes the route. Orders still InRoute become
// Delivered with their stops and earn their points; stops of orders staff
// already moved elsewhere are left unresolved.
func (l RouteLifecycle) Liquidate(r *route.Route, p Participants, now time.Time) (Outcome, error) {
	var settle []*order.Order
	for _, id := range r.OrderIDs() {
		o, err := p.order(id)
		if err != nil {
			return Outcome{}, err
		}
		if o.Status() == order.InRoute {
			settle = append(settle, o)
		}
	}

	ids := make([]kernel.UUID, 0, len(settle))
	for _, o := range settle {
		ids = append(ids, o.ID())
	}
	tr, err := r.Liquidate(ids, now)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	for _, o := range settle {
		if err = l.resolveOrder(o, order.Delivered, p, now, &out); err != nil {
			return Outcome{}, err
		}
	}

	if err = l.apply(r, p, tr, &out); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// UpdateLocation stores the driver's position and broadcasts it to staff
// and to every customer on the route.
func (l RouteLifecycle) UpdateLocation(r *route.Route, p Participants, point kernel.GeoPoint, now time.Time) (Outcome, error) {
	if err := r.UpdateLocation(point, now); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Events: []event.Event{
		event.ForStaff(event.DriverLocation, event.DriverLocationPayload{
			RouteID:   r.ID().String(),
			Latitude:  point.Latitude(),
			Longitude: point.Longitude(),
			Timestamp: now,
		}),
	}}
	for _, id := range r.OrderIDs() {
		o, ok := p.Orders[id]
		if !ok {
			continue
		}
		out.Events = append(out.Events, event.ForCustomer(o.AccessToken(), event.LocationUpdate,
			event.LocationUpdatePayload{Latitude: point.Latitude(), Longitude: point.Longitude(), Timestamp: now}))
	}
	return out, nil
}

// Cancel marks the route Canceled and releases its orders: every order that
// was not delivered returns to Pending. Deleting stops, evidence and chat is
// left to the caller's unit of work.
func (l RouteLifecycle) Cancel(r *route.Route, p Participants) (Outcome, error) {
	if err := r.Cancel(); err != nil {
		return Outcome{}, err
	}
	return l.Release(r, p)
}

// Release unlinks every order of the route. Orders that were not delivered
// return to Pending. It is used on its own when a closed route is deleted.
func (l RouteLifecycle) Release(r *route.Route, p Participants) (Outcome, error) {
	var out Outcome
	for _, id := range r.OrderIDs() {
		o, err := p.order(id)
		if err != nil {
			return Outcome{}, err
		}
		o.DetachFromRoute()
		out.touchOrder(o)
	}
	return out, nil
}

// RemoveStop takes an order's Pending stop out of its route and unlinks the order.
func (l RouteLifecycle) RemoveStop(r *route.Route, o *order.Order, now time.Time) (Outcome, error) {
	tr, err := r.RemoveStop(o.ID(), now)
	if err != nil {
		return Outcome{}, err
	}

	o.DetachFromRoute()
	out := Outcome{Orders: []*order.Order{o}}
	if tr.Completed {
		out.Events = append(out.Events,
			event.ForStaff(event.RouteCompleted, event.RoutePayload{RouteID: r.ID().String()}))
	}
	return out, nil
}

// resolveOrder moves o to target and applies the loyalty rule.
func (l RouteLifecycle) resolveOrder(o *order.Order, target order.Status, p Participants, now time.Time, out *Outcome) error {
	previous := o.Status()
	if err := o.ResolveDelivery(target); err != nil {
		return err
	}
	out.touchOrder(o)

	c, err := p.client(o.ClientID())
	if err != nil {
		return err
	}
	tx, err := loyalty.OnStatusChange(c, o, previous, target, now)
	if err != nil {
		return err
	}
	if tx != nil {
		out.Ledger = append(out.Ledger, tx)
	}
	if previous != target {
		out.touchClient(c)
	}
	return nil
}

// apply turns the stop movements of tr into notifications.
func (l RouteLifecycle) apply(r *route.Route, p Participants, tr route.Transition, out *Outcome) error {
	for _, d := range tr.Demoted {
		o, err := p.order(d.OrderID())
		if err != nil {
			return err
		}
		out.Events = append(out.Events, event.ForCustomer(o.AccessToken(), event.DeliveryUpdate,
			event.DeliveryUpdatePayload{Status: event.StatusInRoute, Message: event.MessageBackInQueue}))
	}

	if d := tr.Promoted; d != nil {
		o, err := p.order(d.OrderID())
		if err != nil {
			return err
		}
		id := d.ID()
		out.NextDeliveryID = &id
		out.Events = append(out.Events,
			l.customerUpdate(o, event.StatusInTransit, event.MessageInTransit, "¡Tu pedido va en camino!"),
			event.ForStaff(event.DeliveryInTransit, event.DeliveryInTransitPayload{
				ID:      d.ID().String(),
				OrderID: o.ID().String(),
				RouteID: r.ID().String(),
			}),
		)
	}

	if tr.Completed {
		out.Events = append(out.Events,
			event.ForStaff(event.RouteCompleted, event.RoutePayload{RouteID: r.ID().String()}))
	}
	return nil
}

func (l RouteLifecycle) resolvedEvents(d *route.Delivery, o *order.Order) []event.Event {
	if d.Status() == route.DeliveryNotDelivered {
		return []event.Event{
			l.customerUpdate(o, event.StatusNotDelivered, event.MessageNotDelivered, "Entrega no realizada"),
			event.ForStaff(event.DeliveryFailed, event.DeliveryFailedPayload{
				ID:            d.ID().String(),
				OrderID:       o.ID().String(),
				Status:        d.Status().String(),
				FailureReason: d.FailureReason(),
			}),
		}
	}
	return []event.Event{
		l.customerUpdate(o, event.StatusDelivered, event.MessageDelivered, "Pedido entregado"),
		event.ForStaff(event.DeliveryCompleted, event.DeliveryCompletedPayload{
			ID:          d.ID().String(),
			OrderID:     o.ID().String(),
			Status:      d.Status().String(),
			DeliveredAt: d.DeliveredAt(),
		}),
	}
}

// customerUpdate is a DeliveryUpdate for o's customer, also pushed to their devices.
func (l RouteLifecycle) customerUpdate(o *order.Order, status, message, title string) event.Event {
	clientID := o.ClientID()
	return event.ForCustomer(o.AccessToken(), event.DeliveryUpdate,
		event.DeliveryUpdatePayload{Status: status, Message: message},
	).WithPush(event.Push{
		Title:    title,
		Body:     message,
		Link:     customerLinkPrefix + o.AccessToken().String(),
		ClientID: &clientID,
	})
}
