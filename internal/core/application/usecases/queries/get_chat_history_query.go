package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrGetChatHistoryQueryIsNotConstructed = errors.New(
	"GetChatHistoryQuery must be created via NewStaffChatHistoryQuery, " +
		"NewDriverChatHistoryQuery or NewCustomerChatHistoryQuery constructor",
)

// GetChatHistoryQuery reads one chat channel oldest first.
//
// Staff read the route channel. Drivers read the route channel, or a
// stop's channel when a delivery id is given. Customers read the channel
// of their own stop.
type GetChatHistoryQuery struct {
	routeID     kernel.UUID
	driverToken kernel.Token
	accessToken kernel.Token
	deliveryID  *kernel.UUID

	guard guard.ConstructorGuard
}

func NewStaffChatHistoryQuery(routeID kernel.UUID) (GetChatHistoryQuery, error) {
	if err := routeID.Validate(); err != nil {
		return GetChatHistoryQuery{}, err
	}
	return GetChatHistoryQuery{routeID: routeID, guard: guard.NewConstructorGuard()}, nil
}

func NewDriverChatHistoryQuery(token kernel.Token, deliveryID *kernel.UUID) (GetChatHistoryQuery, error) {
	if token.IsEmpty() {
		return GetChatHistoryQuery{}, kernel.ErrTokenIsEmpty
	}
	if deliveryID != nil {
		if err := deliveryID.Validate(); err != nil {
			return GetChatHistoryQuery{}, err
		}
	}
	return GetChatHistoryQuery{driverToken: token, deliveryID: deliveryID, guard: guard.NewConstructorGuard()}, nil
}

func NewCustomerChatHistoryQuery(accessToken kernel.Token) (GetChatHistoryQuery, error) {
	if accessToken.IsEmpty() {
		return GetChatHistoryQuery{}, kernel.ErrTokenIsEmpty
	}
	return GetChatHistoryQuery{accessToken: accessToken, guard: guard.NewConstructorGuard()}, nil
}

func (q GetChatHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetChatHistoryQueryIsNotConstructed)
}

type ChatMessageView struct {
	ID         kernel.UUID
	RouteID    kernel.UUID
	DeliveryID *kernel.UUID
	Sender     chat.Sender
	Text       string
	SentAt     time.Time
}
