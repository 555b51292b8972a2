// Package chat models the append-only conversations attached to a route.
//
// Messages without a delivery form the staff and driver channel. Messages
// that carry a delivery form the channel between the driver and that stop's
// customer.
package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// MaxTextLength bounds a message, in characters.
const MaxTextLength = 1000

// Sender identifies who wrote a message.
type Sender int

const (
	UnknownSender Sender = iota
	Admin
	Driver
	Client
)

func (s Sender) String() string {
	switch s {
	case Admin:
		return "Admin"
	case Driver:
		return "Driver"
	case Client:
		return "Client"
	default:
		return "Unknown"
	}
}

// ParseSender converts a case-insensitive name into a Sender.
func ParseSender(s string) (Sender, error) {
	for _, sender := range []Sender{Admin, Driver, Client} {
		if strings.EqualFold(sender.String(), strings.TrimSpace(s)) {
			return sender, nil
		}
	}
	return UnknownSender, errs.NewValueIsInvalidErrorWithCause("sender", fmt.Errorf("%q is not a valid sender", s))
}

// ErrMessageIsNotConstructed is returned when a zero-value Message is used.
var ErrMessageIsNotConstructed = errors.New("Message must be created via NewMessage constructor")

// Message is one chat line.
//
// Business rules:
//   - Staff only write on the route channel (no delivery)
//   - Customers only write on their stop's channel (delivery required)
//   - Drivers write on either
type Message struct {
	id         kernel.UUID
	routeID    kernel.UUID
	deliveryID *kernel.UUID
	sender     Sender
	text       string
	sentAt     time.Time
	guard      guard.ConstructorGuard
}

// NewMessage validates a chat line. It also restores persisted messages.
func NewMessage(
	id, routeID kernel.UUID,
	deliveryID *kernel.UUID,
	sender Sender,
	text string,
	sentAt time.Time,
) (*Message, error) {
	m := &Message{
		id:         id,
		routeID:    routeID,
		deliveryID: deliveryID,
		sender:     sender,
		text:       strings.TrimSpace(text),
		sentAt:     sentAt,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(id.Validate(), routeID.Validate(), m.checkText(), m.checkChannel()); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Message) Validate() error {
	if m == nil {
		return ErrMessageIsNotConstructed
	}
	return m.guard.Validate(ErrMessageIsNotConstructed)
}

func (m *Message) ID() kernel.UUID {
	return m.id
}

func (m *Message) RouteID() kernel.UUID {
	return m.routeID
}

// DeliveryID is nil on the staff and driver channel.
func (m *Message) DeliveryID() *kernel.UUID {
	return m.deliveryID
}

func (m *Message) Sender() Sender {
	return m.sender
}

func (m *Message) Text() string {
	return m.text
}

func (m *Message) SentAt() time.Time {
	return m.sentAt
}

// IsCustomerChannel reports whether the message belongs to a stop's channel.
func (m *Message) IsCustomerChannel() bool {
	return m.deliveryID != nil
}

func (m *Message) checkText() error {
	if m.text == "" {
		return errs.NewValueIsRequiredError("text")
	}
	if n := utf8.RuneCountInString(m.text); n > MaxTextLength {
		return errs.NewValueIsOutOfRangeError("text length", n, 1, MaxTextLength)
	}
	return nil
}

func (m *Message) checkChannel() error {
	switch m.sender {
	case Admin:
		if m.deliveryID != nil {
			return errs.NewValueIsInvalidErrorWithCause("deliveryId", errors.New("staff write on the route channel only"))
		}
	case Client:
		if m.deliveryID == nil {
			return errs.NewValueIsRequiredErrorWithCause("deliveryId", errors.New("customers write on their stop's channel"))
		}
	case Driver:
	default:
		return errs.NewValueIsInvalidErrorWithCause("sender", fmt.Errorf("%d is not a valid sender", m.sender))
	}
	if m.deliveryID != nil {
		return m.deliveryID.Validate()
	}
	return nil
}
