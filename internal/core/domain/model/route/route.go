package route

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

const namePrefix = "Ruta "

var (
	// ErrRouteIsNotConstructed is returned when a zero-value Route is used.
	ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute constructor")

	// ErrNoEligibleOrders is returned when a route would have no stops.
	ErrNoEligibleOrders = errs.NewInvalidStateError("route", "no eligible orders")
)

// Outcome is the driver's report for a stop.
type Outcome struct {
	Status        DeliveryStatus
	Notes         string
	FailureReason string
	EvidenceURLs  []string
}

// DeliveredOutcome reports a successful hand-over.
func DeliveredOutcome(notes string, evidenceURLs []string) Outcome {
	return Outcome{Status: DeliveryDelivered, Notes: notes, EvidenceURLs: evidenceURLs}
}

// FailedOutcome reports a failed attempt.
func FailedOutcome(reason, notes string, evidenceURLs []string) Outcome {
	return Outcome{Status: DeliveryNotDelivered, FailureReason: reason, Notes: notes, EvidenceURLs: evidenceURLs}
}

func (o Outcome) evidenceType() EvidenceType {
	if o.Status == DeliveryNotDelivered {
		return NonDeliveryProof
	}
	return DeliveryProof
}

// Transition describes what a Route method changed. Callers turn it into
// order updates and notifications; the route itself stays free of side effects.
type Transition struct {
	// Promoted is the stop that became InTransit, if any.
	Promoted *Delivery
	// Demoted are the stops moved from InTransit back to Pending.
	Demoted []*Delivery
	// Resolved is the stop that reached a terminal state.
	Resolved *Delivery
	// Evidence lists the photos appended by this transition.
	Evidence []*Evidence
	// Replayed is set when a terminal report was repeated. Only evidence changed.
	Replayed bool
	// Closed lists the stops force-delivered by liquidation.
	Closed []*Delivery
	// Removed is the stop taken out of the route.
	Removed *Delivery
	// Completed is set when the route became Completed.
	Completed bool
}

// Route is the aggregate root of a driver session: an ordered list of stops
// identified by an opaque driver token.
//
// Route enforces these invariants:
//   - At most one stop is InTransit at any time
//   - Stops are only worked on while the route is Active
//   - SortOrder is unique within the route
//   - The route completes exactly once, when no stop is Pending or InTransit
//
// Example:
//
//	r, err := route.NewRoute(kernel.NewUUID(), kernel.NewToken(), orderIDs, now)
//	if err != nil {
//	    return err
//	}
//	tr, err := r.Start(now)
//	// tr.Promoted is the first stop, now InTransit
type Route struct {
	id                 kernel.UUID
	name               string
	driverToken        kernel.Token
	status             Status
	createdAt          time.Time
	startedAt          *time.Time
	completedAt        *time.Time
	location           *kernel.GeoPoint
	lastLocationUpdate *time.Time
	deliveries         []*Delivery
	guard              guard.ConstructorGuard
}

// NewRoute creates a Pending route with one stop per order, keeping the
// caller's sequence as SortOrder 1..N. Stop order is computed outside the
// system, so it is never rearranged here. Duplicate order ids are ignored.
//
// Parameters:
//   - id: route identifier
//   - driverToken: the driver's link credential
//   - orderIDs: already-eligible orders, in driving order
//   - createdAt: creation time, also used for the route name
//
// Returns:
//   - *Route: the created route
//   - error: ErrNoEligibleOrders when orderIDs is empty, or validation errors
func NewRoute(id kernel.UUID, driverToken kernel.Token, orderIDs []kernel.UUID, createdAt time.Time) (*Route, error) {
	r := &Route{
		name:      namePrefix + createdAt.Format("02/01 15:04"),
		status:    Pending,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(r.setID(id), r.setDriverToken(driverToken)); err != nil {
		return nil, err
	}

	seen := make(map[kernel.UUID]struct{}, len(orderIDs))
	for _, orderID := range orderIDs {
		if _, ok := seen[orderID]; ok {
			continue
		}
		seen[orderID] = struct{}{}

		d, err := NewDelivery(kernel.NewUUID(), id, orderID, len(r.deliveries)+1)
		if err != nil {
			return nil, err
		}
		r.deliveries = append(r.deliveries, d)
	}

	if len(r.deliveries) == 0 {
		return nil, ErrNoEligibleOrders
	}

	return r, nil
}

// Snapshot carries the persisted state of a route into RestoreRoute.
type Snapshot struct {
	ID                 kernel.UUID
	Name               string
	DriverToken        kernel.Token
	Status             Status
	CreatedAt          time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	Location           *kernel.GeoPoint
	LastLocationUpdate *time.Time
	Deliveries         []*Delivery
}

// RestoreRoute rebuilds a route from persistence and re-checks the stop invariants.
func RestoreRoute(s Snapshot) (*Route, error) {
	r := &Route{
		name:               s.Name,
		createdAt:          s.CreatedAt,
		startedAt:          s.StartedAt,
		completedAt:        s.CompletedAt,
		location:           s.Location,
		lastLocationUpdate: s.LastLocationUpdate,
		guard:              guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(s.ID),
		r.setDriverToken(s.DriverToken),
		r.setStatus(s.Status),
		r.setDeliveries(s.ID, s.Deliveries),
	); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

func (r *Route) IsEqual(other *Route) bool {
	return other != nil && r.id.IsEqual(other.id)
}

func (r *Route) ID() kernel.UUID {
	return r.id
}

// Name is the display label "Ruta dd/MM HH:mm".
func (r *Route) Name() string {
	return r.name
}

func (r *Route) DriverToken() kernel.Token {
	return r.driverToken
}

func (r *Route) Status() Status {
	return r.status
}

func (r *Route) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Route) StartedAt() *time.Time {
	return r.startedAt
}

func (r *Route) CompletedAt() *time.Time {
	return r.completedAt
}

// Location returns the last reported driver position, or nil.
func (r *Route) Location() *kernel.GeoPoint {
	return r.location
}

func (r *Route) LastLocationUpdate() *time.Time {
	return r.lastLocationUpdate
}

// Deliveries returns the stops ordered by SortOrder.
func (r *Route) Deliveries() []*Delivery {
	deliveries := make([]*Delivery, len(r.deliveries))
	copy(deliveries, r.deliveries)
	return deliveries
}

// OrderIDs returns the routed orders in stop order.
func (r *Route) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(r.deliveries))
	for _, d := range r.deliveries {
		ids = append(ids, d.orderID)
	}
	return ids
}

// Delivery finds a stop by id.
func (r *Route) Delivery(id kernel.UUID) (*Delivery, error) {
	for _, d := range r.deliveries {
		if d.id.IsEqual(id) {
			return d, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("delivery", id.String())
}

// DeliveryForOrder finds the stop of an order.
func (r *Route) DeliveryForOrder(orderID kernel.UUID) (*Delivery, error) {
	for _, d := range r.deliveries {
		if d.orderID.IsEqual(orderID) {
			return d, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("delivery", orderID.String())
}

// InTransit returns the stop currently being driven to, or nil.
func (r *Route) InTransit() *Delivery {
	for _, d := range r.deliveries {
		if d.status == DeliveryInTransit {
			return d
		}
	}
	return nil
}

// Start activates a Pending route and promotes its first pending stop.
//
// Returns:
//   - Transition: Promoted is the first stop; Completed is set when the
//     route has no open stops left
//   - error: errs.InvalidStateError when the route is not Pending
func (r *Route) Start(now time.Time) (Transition, error) {
	status, err := r.status.Start()
	if err != nil {
		return Transition{}, err
	}

	r.status = status
	startedAt := now
	r.startedAt = &startedAt

	var tr Transition
	if first := r.nextPending(0); first != nil {
		tr = r.promote(first)
	}
	tr.Completed = r.checkCompletion(now)
	return tr, nil
}

// MarkInTransit promotes a pending stop and demotes any other stop that was
// InTransit.
//
// Errors:
//   - errs.ObjectNotFoundError: the stop is not on this route
//   - errs.InvalidStateError: the route is not Active, or the stop is not Pending
func (r *Route) MarkInTransit(deliveryID kernel.UUID) (Transition, error) {
	d, err := r.Delivery(deliveryID)
	if err != nil {
		return Transition{}, err
	}
	if r.status != Active {
		return Transition{}, errs.NewInvalidStateError("route", fmt.Sprintf("%s route is not active", r.status))
	}
	if _, err = d.status.MarkInTransit(); err != nil {
		return Transition{}, err
	}

	return r.promote(d), nil
}

// Resolve records the driver's outcome for a stop, then advances to the next
// stop and checks for completion.
//
// Repeating the outcome a stop already has is a successful replay: the
// evidence is appended and nothing else changes, even on a completed route.
// Reporting the opposite outcome for a resolved stop is rejected.
//
// Auto-advance picks the Pending stop with the smallest SortOrder greater
// than the resolved one, falling back to the smallest Pending SortOrder.
func (r *Route) Resolve(deliveryID kernel.UUID, outcome Outcome, now time.Time) (Transition, error) {
	d, err := r.Delivery(deliveryID)
	if err != nil {
		return Transition{}, err
	}
	if !outcome.Status.IsTerminal() {
		return Transition{}, errs.NewValueIsInvalidErrorWithCause("outcome",
			fmt.Errorf("%s is not an outcome", outcome.Status))
	}

	if d.status == outcome.Status {
		added, err := d.attach(outcome.EvidenceURLs, outcome.evidenceType(), now)
		if err != nil {
			return Transition{}, err
		}
		return Transition{Resolved: d, Evidence: added, Replayed: true}, nil
	}

	if r.status != Active {
		return Transition{}, errs.NewInvalidStateError("route", fmt.Sprintf("%s route is not active", r.status))
	}
	if err = d.resolve(outcome, now); err != nil {
		return Transition{}, err
	}
	added, err := d.attach(outcome.EvidenceURLs, outcome.evidenceType(), now)
	if err != nil {
		return Transition{}, err
	}

	var tr Transition
	if next := r.nextPending(d.sortOrder); next != nil {
		tr = r.promote(next)
	}
	tr.Resolved = d
	tr.Evidence = added
	tr.Completed = r.checkCompletion(now)
	return tr, nil
}

// UpdateLocation stores the driver's last position. Updates are
// last-write-wins and accepted in any route status.
func (r *Route) UpdateLocation(point kernel.GeoPoint, now time.Time) error {
	if err := point.Validate(); err != nil {
		return err
	}
	r.location = &point
	at := now
	r.lastLocationUpdate = &at
	return nil
}

// Reorder reassigns SortOrder 1..N following deliveryIDs. Repeated ids are
// ignored and stops that are not listed keep their relative order after the
// listed ones. Statuses never change.
func (r *Route) Reorder(deliveryIDs []kernel.UUID) error {
	if !r.status.IsOpen() {
		return errs.NewInvalidStateError("route", fmt.Sprintf("%s route cannot be reordered", r.status))
	}

	listed := make(map[kernel.UUID]struct{}, len(deliveryIDs))
	ordered := make([]*Delivery, 0, len(r.deliveries))
	for _, id := range deliveryIDs {
		d, err := r.Delivery(id)
		if err != nil {
			return err
		}
		if _, ok := listed[id]; ok {
			continue
		}
		listed[id] = struct{}{}
		ordered = append(ordered, d)
	}
	for _, d := range r.deliveries {
		if _, ok := listed[d.id]; !ok {
			ordered = append(ordered, d)
		}
	}

	for i, d := range ordered {
		d.sortOrder = i + 1
	}
	r.deliveries = ordered
	return nil
}

// Liquidate force-closes the route. The open stops of the orders listed in
// settle become Delivered; other open stops stay unresolved, and one left
// InTransit goes back to Pending. Closed lists the stops that were delivered.
func (r *Route) Liquidate(settle []kernel.UUID, now time.Time) (Transition, error) {
	status, err := r.status.Liquidate()
	if err != nil {
		return Transition{}, err
	}

	var tr Transition
	for _, d := range r.deliveries {
		if !d.status.IsOpen() {
			continue
		}
		if !slices.ContainsFunc(settle, d.orderID.IsEqual) {
			if d.status == DeliveryInTransit {
				d.demote()
			}
			continue
		}
		if err = d.resolve(DeliveredOutcome("", nil), now); err != nil {
			return Transition{}, err
		}
		tr.Closed = append(tr.Closed, d)
	}

	r.status = status
	completedAt := now
	r.completedAt = &completedAt
	tr.Completed = true
	return tr, nil
}

// Cancel marks an open route as Canceled. Releasing its orders and deleting
// its stops is done by the caller inside the same unit of work.
func (r *Route) Cancel() error {
	status, err := r.status.Cancel()
	if err != nil {
		return err
	}
	r.status = status
	return nil
}

// RemoveStop takes a Pending stop out of the route, for instance when its
// order becomes a pick-up. An Active route left without open stops completes.
func (r *Route) RemoveStop(orderID kernel.UUID, now time.Time) (Transition, error) {
	d, err := r.DeliveryForOrder(orderID)
	if err != nil {
		return Transition{}, err
	}
	if d.status != DeliveryPending {
		return Transition{}, errs.NewInvalidStateError("delivery",
			fmt.Sprintf("%s delivery cannot be removed from its route", d.status))
	}

	r.deliveries = slices.DeleteFunc(r.deliveries, func(x *Delivery) bool { return x == d })
	return Transition{Removed: d, Completed: r.checkCompletion(now)}, nil
}

// promote makes d the only InTransit stop.
func (r *Route) promote(d *Delivery) Transition {
	var tr Transition
	for _, other := range r.deliveries {
		if other != d && other.status == DeliveryInTransit {
			other.demote()
			tr.Demoted = append(tr.Demoted, other)
		}
	}
	if d.status == DeliveryPending {
		_ = d.markInTransit()
	}
	tr.Promoted = d
	return tr
}

// nextPending returns the first Pending stop after sortOrder, or the first
// Pending stop overall when none follows.
func (r *Route) nextPending(sortOrder int) *Delivery {
	var fallback *Delivery
	for _, d := range r.deliveries {
		if d.status != DeliveryPending {
			continue
		}
		if d.sortOrder > sortOrder {
			return d
		}
		if fallback == nil {
			fallback = d
		}
	}
	return fallback
}

func (r *Route) checkCompletion(now time.Time) bool {
	if r.status != Active {
		return false
	}
	for _, d := range r.deliveries {
		if d.status.IsOpen() {
			return false
		}
	}

	status, err := r.status.Complete()
	if err != nil {
		return false
	}
	r.status = status
	completedAt := now
	r.completedAt = &completedAt
	return true
}

func (r *Route) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Route) setDriverToken(token kernel.Token) error {
	if token.IsEmpty() {
		return errs.NewValueIsRequiredError("driverToken")
	}
	r.driverToken = token
	return nil
}

func (r *Route) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	r.status = status
	return nil
}

func (r *Route) setDeliveries(routeID kernel.UUID, deliveries []*Delivery) error {
	positions := make(map[int]struct{}, len(deliveries))
	inTransit := 0
	for _, d := range deliveries {
		if err := d.Validate(); err != nil {
			return err
		}
		if !d.routeID.IsEqual(routeID) {
			return errs.NewValueIsInvalidErrorWithCause("deliveries",
				fmt.Errorf("delivery %s belongs to another route", d.id))
		}
		if _, ok := positions[d.sortOrder]; ok {
			return errs.NewValueIsInvalidErrorWithCause("deliveries",
				fmt.Errorf("sort order %d is used twice", d.sortOrder))
		}
		positions[d.sortOrder] = struct{}{}
		if d.status == DeliveryInTransit {
			inTransit++
		}
	}
	if inTransit > 1 {
		return errs.NewValueIsInvalidErrorWithCause("deliveries",
			fmt.Errorf("%d deliveries are in transit", inTransit))
	}

	r.deliveries = make([]*Delivery, len(deliveries))
	copy(r.deliveries, deliveries)
	slices.SortFunc(r.deliveries, func(a, b *Delivery) int { return cmp.Compare(a.sortOrder, b.sortOrder) })
	return nil
}
