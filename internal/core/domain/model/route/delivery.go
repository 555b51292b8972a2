package route

import (
	"errors"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// ErrDeliveryIsNotConstructed is returned when a zero-value Delivery is used.
var ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")

// Delivery is a stop: the occurrence of one order within one route.
//
// A Delivery is an entity inside the Route aggregate. Its status only changes
// through Route methods, which is where the single in-transit stop rule lives.
// Evidence can still be appended after the stop becomes terminal.
type Delivery struct {
	id            kernel.UUID
	routeID       kernel.UUID
	orderID       kernel.UUID
	sortOrder     int
	status        DeliveryStatus
	notes         string
	failureReason string
	deliveredAt   *time.Time
	evidence      []*Evidence
	guard         guard.ConstructorGuard
}

// NewDelivery creates a Pending stop at the given position.
//
// Parameters:
//   - id: stop identifier
//   - routeID: owning route
//   - orderID: routed order
//   - sortOrder: 1-based position within the route
func NewDelivery(id, routeID, orderID kernel.UUID, sortOrder int) (*Delivery, error) {
	d := &Delivery{
		status: DeliveryPending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setIDs(id, routeID, orderID),
		d.setSortOrder(sortOrder),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDelivery rebuilds a stop from persistence.
func RestoreDelivery(
	id, routeID, orderID kernel.UUID,
	sortOrder int,
	status DeliveryStatus,
	notes, failureReason string,
	deliveredAt *time.Time,
	evidence []*Evidence,
) (*Delivery, error) {
	d := &Delivery{
		notes:         notes,
		failureReason: failureReason,
		deliveredAt:   deliveredAt,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setIDs(id, routeID, orderID),
		d.setSortOrder(sortOrder),
		d.setStatus(status),
		d.setEvidence(evidence),
	); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

func (d *Delivery) ID() kernel.UUID {
	return d.id
}

func (d *Delivery) RouteID() kernel.UUID {
	return d.routeID
}

func (d *Delivery) OrderID() kernel.UUID {
	return d.orderID
}

// SortOrder is the 1-based position of the stop. It doubles as the
// customer's queue position.
func (d *Delivery) SortOrder() int {
	return d.sortOrder
}

func (d *Delivery) Status() DeliveryStatus {
	return d.status
}

func (d *Delivery) Notes() string {
	return d.notes
}

func (d *Delivery) FailureReason() string {
	return d.failureReason
}

// DeliveredAt is the time the stop was resolved, for both outcomes.
func (d *Delivery) DeliveredAt() *time.Time {
	return d.deliveredAt
}

// Evidence returns a copy of the attached photos.
func (d *Delivery) Evidence() []*Evidence {
	evidence := make([]*Evidence, len(d.evidence))
	copy(evidence, d.evidence)
	return evidence
}

func (d *Delivery) markInTransit() error {
	status, err := d.status.MarkInTransit()
	if err != nil {
		return err
	}
	d.status = status
	return nil
}

func (d *Delivery) demote() {
	if d.status == DeliveryInTransit {
		d.status = DeliveryPending
	}
}

func (d *Delivery) resolve(outcome Outcome, now time.Time) error {
	status, err := d.status.Resolve(outcome.Status)
	if err != nil {
		return err
	}

	d.status = status
	d.notes = strings.TrimSpace(outcome.Notes)
	if status == DeliveryNotDelivered {
		d.failureReason = strings.TrimSpace(outcome.FailureReason)
	}
	resolvedAt := now
	d.deliveredAt = &resolvedAt
	return nil
}

func (d *Delivery) attach(urls []string, evidenceType EvidenceType, now time.Time) ([]*Evidence, error) {
	added := make([]*Evidence, 0, len(urls))
	for _, url := range urls {
		e, err := NewEvidence(kernel.NewUUID(), d.id, url, evidenceType, now)
		if err != nil {
			return nil, err
		}
		added = append(added, e)
	}
	d.evidence = append(d.evidence, added...)
	return added, nil
}

func (d *Delivery) setIDs(id, routeID, orderID kernel.UUID) error {
	if err := errors.Join(id.Validate(), routeID.Validate(), orderID.Validate()); err != nil {
		return err
	}
	d.id = id
	d.routeID = routeID
	d.orderID = orderID
	return nil
}

func (d *Delivery) setSortOrder(sortOrder int) error {
	if sortOrder < 1 {
		return errs.NewValueIsOutOfRangeError("sortOrder", sortOrder, 1, "unbounded")
	}
	d.sortOrder = sortOrder
	return nil
}

func (d *Delivery) setStatus(status DeliveryStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}
	d.status = status
	return nil
}

func (d *Delivery) setEvidence(evidence []*Evidence) error {
	for _, e := range evidence {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	d.evidence = make([]*Evidence, len(evidence))
	copy(d.evidence, evidence)
	return nil
}
