package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var (
	ErrResolveDeliveryCommandIsNotConstructed = errors.New(
		"ResolveDeliveryCommand must be created via NewDeliverCommand or NewFailDeliveryCommand",
	)
	ErrFailureReasonIsRequired = errs.NewValueIsRequiredError("reason")
)

// MaxPhotosPerReport bounds the evidence a single report may upload.
const MaxPhotosPerReport = 10

// Photo is one uploaded evidence file.
type Photo struct {
	Filename string
	Content  io.Reader
}

// ResolveDeliveryCommand is the driver's report for a stop: delivered, or
// failed with a reason. Photos become delivery evidence.
type ResolveDeliveryCommand struct { //nolint:recvcheck //using for validation
	route      RouteRef
	deliveryID kernel.UUID
	outcome    route.DeliveryStatus
	reason     string
	notes      string
	photos     []Photo

	guard guard.ConstructorGuard
}

// NewDeliverCommand reports a successful hand-over.
func NewDeliverCommand(ref RouteRef, deliveryID kernel.UUID, notes string, photos []Photo) (ResolveDeliveryCommand, error) {
	return newResolveDeliveryCommand(ref, deliveryID, route.DeliveryDelivered, "", notes, photos)
}

// NewFailDeliveryCommand reports a failed attempt. The reason is required.
func NewFailDeliveryCommand(
	ref RouteRef,
	deliveryID kernel.UUID,
	reason string,
	notes string,
	photos []Photo,
) (ResolveDeliveryCommand, error) {
	return newResolveDeliveryCommand(ref, deliveryID, route.DeliveryNotDelivered, reason, notes, photos)
}

func newResolveDeliveryCommand(
	ref RouteRef,
	deliveryID kernel.UUID,
	outcome route.DeliveryStatus,
	reason string,
	notes string,
	photos []Photo,
) (ResolveDeliveryCommand, error) {
	cmd := ResolveDeliveryCommand{
		outcome: outcome,
		notes:   strings.TrimSpace(notes),
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		ref.Validate(),
		deliveryID.Validate(),
		cmd.setReason(reason),
		cmd.setPhotos(photos),
	); err != nil {
		return ResolveDeliveryCommand{}, err
	}

	cmd.route = ref
	cmd.deliveryID = deliveryID
	return cmd, nil
}

func (c ResolveDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrResolveDeliveryCommandIsNotConstructed)
}

func (c ResolveDeliveryCommand) Route() RouteRef {
	return c.route
}

func (c ResolveDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c ResolveDeliveryCommand) Photos() []Photo {
	return c.photos
}

// Outcome builds the domain report once the photos are stored at urls.
func (c ResolveDeliveryCommand) Outcome(urls []string) route.Outcome {
	if c.outcome == route.DeliveryNotDelivered {
		return route.FailedOutcome(c.reason, c.notes, urls)
	}
	return route.DeliveredOutcome(c.notes, urls)
}

func (c *ResolveDeliveryCommand) setReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if c.outcome == route.DeliveryNotDelivered && reason == "" {
		return ErrFailureReasonIsRequired
	}
	c.reason = reason
	return nil
}

func (c *ResolveDeliveryCommand) setPhotos(photos []Photo) error {
	if len(photos) > MaxPhotosPerReport {
		return errs.NewValueIsOutOfRangeError("photos", len(photos), 0, MaxPhotosPerReport)
	}
	for i, p := range photos {
		if p.Content == nil {
			return errs.NewValueIsRequiredError(fmt.Sprintf("photos[%d]", i))
		}
	}
	c.photos = photos
	return nil
}
