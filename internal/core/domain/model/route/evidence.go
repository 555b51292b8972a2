package route

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// EvidenceType tells whether a photo proves a delivery or a failed attempt.
type EvidenceType int

const (
	EvidenceUnknown EvidenceType = iota
	DeliveryProof
	NonDeliveryProof
)

func (t EvidenceType) String() string {
	switch t {
	case DeliveryProof:
		return "DeliveryProof"
	case NonDeliveryProof:
		return "NonDeliveryProof"
	default:
		return "Unknown"
	}
}

func (t EvidenceType) Validate() error {
	if t != DeliveryProof && t != NonDeliveryProof {
		return errs.NewValueIsInvalidErrorWithCause("evidence type", fmt.Errorf("%d is not a valid type", t))
	}
	return nil
}

// ErrEvidenceIsNotConstructed is returned when a zero-value Evidence is used.
var ErrEvidenceIsNotConstructed = errors.New("Evidence must be created via NewEvidence constructor")

// Evidence is an append-only photo reference attached to a stop.
type Evidence struct {
	id           kernel.UUID
	deliveryID   kernel.UUID
	imageURL     string
	evidenceType EvidenceType
	createdAt    time.Time
	guard        guard.ConstructorGuard
}

// NewEvidence validates a photo reference. It is also used to restore
// persisted evidence since evidence is immutable.
func NewEvidence(
	id, deliveryID kernel.UUID,
	imageURL string,
	evidenceType EvidenceType,
	createdAt time.Time,
) (*Evidence, error) {
	e := &Evidence{
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	imageURL = strings.TrimSpace(imageURL)
	var urlErr error
	if imageURL == "" {
		urlErr = errs.NewValueIsRequiredError("imageUrl")
	}

	if err := errors.Join(id.Validate(), deliveryID.Validate(), evidenceType.Validate(), urlErr); err != nil {
		return nil, err
	}

	e.id = id
	e.deliveryID = deliveryID
	e.imageURL = imageURL
	e.evidenceType = evidenceType
	return e, nil
}

func (e *Evidence) Validate() error {
	if e == nil {
		return ErrEvidenceIsNotConstructed
	}
	return e.guard.Validate(ErrEvidenceIsNotConstructed)
}

func (e *Evidence) ID() kernel.UUID {
	return e.id
}

func (e *Evidence) DeliveryID() kernel.UUID {
	return e.deliveryID
}

func (e *Evidence) ImageURL() string {
	return e.imageURL
}

func (e *Evidence) Type() EvidenceType {
	return e.evidenceType
}

func (e *Evidence) CreatedAt() time.Time {
	return e.createdAt
}
