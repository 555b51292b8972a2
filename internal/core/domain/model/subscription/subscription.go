// Package subscription models device registrations for the push channel.
package subscription

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// Role is the audience a device listens as.
type Role int

const (
	UnknownRole Role = iota
	ClientRole
	DriverRole
	AdminRole
)

func (r Role) String() string {
	switch r {
	case ClientRole:
		return "client"
	case DriverRole:
		return "driver"
	case AdminRole:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range []Role{ClientRole, DriverRole, AdminRole} {
		if strings.EqualFold(r.String(), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return UnknownRole, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
}

// ErrSubscriptionIsNotConstructed is returned when a zero-value Subscription is used.
var ErrSubscriptionIsNotConstructed = errors.New("Subscription must be created via NewSubscription constructor")

// Subscription binds a device token to an audience.
//
// Business rules:
//   - The device token is unique; subscribing again replaces the binding
//   - Client devices carry the client id
//   - Driver devices carry the route token they were handed
type Subscription struct {
	id          kernel.UUID
	role        Role
	deviceToken string
	clientID    *kernel.UUID
	routeToken  kernel.Token
	createdAt   time.Time
	lastUsedAt  time.Time
	guard       guard.ConstructorGuard
}

// NewSubscription registers a device.
func NewSubscription(
	id kernel.UUID,
	role Role,
	deviceToken string,
	clientID *kernel.UUID,
	routeToken kernel.Token,
	now time.Time,
) (*Subscription, error) {
	return RestoreSubscription(id, role, deviceToken, clientID, routeToken, now, now)
}

// RestoreSubscription rebuilds a subscription from persistence.
func RestoreSubscription(
	id kernel.UUID,
	role Role,
	deviceToken string,
	clientID *kernel.UUID,
	routeToken kernel.Token,
	createdAt, lastUsedAt time.Time,
) (*Subscription, error) {
	s := &Subscription{
		id:          id,
		role:        role,
		deviceToken: strings.TrimSpace(deviceToken),
		clientID:    clientID,
		routeToken:  routeToken,
		createdAt:   createdAt,
		lastUsedAt:  lastUsedAt,
		guard:       guard.NewConstructorGuard(),
	}

	var tokenErr error
	if s.deviceToken == "" {
		tokenErr = errs.NewValueIsRequiredError("deviceToken")
	}
	if err := errors.Join(id.Validate(), tokenErr, s.checkAudience()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Subscription) Validate() error {
	if s == nil {
		return ErrSubscriptionIsNotConstructed
	}
	return s.guard.Validate(ErrSubscriptionIsNotConstructed)
}

func (s *Subscription) ID() kernel.UUID {
	return s.id
}

func (s *Subscription) Role() Role {
	return s.role
}

func (s *Subscription) DeviceToken() string {
	return s.deviceToken
}

func (s *Subscription) ClientID() *kernel.UUID {
	return s.clientID
}

func (s *Subscription) RouteToken() kernel.Token {
	return s.routeToken
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) LastUsedAt() time.Time {
	return s.lastUsedAt
}

// Touch records that a push was delivered to the device.
func (s *Subscription) Touch(now time.Time) {
	if now.After(s.lastUsedAt) {
		s.lastUsedAt = now
	}
}

// IsStale reports whether the device has not been used since before cutoff.
func (s *Subscription) IsStale(cutoff time.Time) bool {
	return s.lastUsedAt.Before(cutoff)
}

func (s *Subscription) checkAudience() error {
	switch s.role {
	case ClientRole:
		if s.clientID == nil {
			return errs.NewValueIsRequiredError("clientId")
		}
		return s.clientID.Validate()
	case DriverRole:
		if s.routeToken.IsEmpty() {
			return errs.NewValueIsRequiredError("routeToken")
		}
		return nil
	case AdminRole:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", s.role))
	}
}
