package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

var ErrSendChatMessageCommandIsNotConstructed = errors.New(
	"SendChatMessageCommand must be created via NewStaffChatMessage, NewDriverChatMessage or NewCustomerChatMessage",
)

// SendChatMessageCommand is one chat line. Staff and drivers address the
// route, customers address their own order's stop through the access token.
type SendChatMessageCommand struct { //nolint:recvcheck //using for validation
	sender      chat.Sender
	route       RouteRef
	accessToken kernel.Token
	deliveryID  *kernel.UUID
	text        string

	guard guard.ConstructorGuard
}

// NewStaffChatMessage writes on the route channel.
func NewStaffChatMessage(routeID kernel.UUID, text string) (SendChatMessageCommand, error) {
	ref, err := RouteByID(routeID)
	if err := errors.Join(err, checkChatText(text)); err != nil {
		return SendChatMessageCommand{}, err
	}
	return SendChatMessageCommand{
		sender: chat.Admin,
		route:  ref,
		text:   strings.TrimSpace(text),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// NewDriverChatMessage writes on the route channel, or on a stop's channel
// when deliveryID is set.
func NewDriverChatMessage(token kernel.Token, deliveryID *kernel.UUID, text string) (SendChatMessageCommand, error) {
	ref, err := RouteByDriverToken(token)
	var idErr error
	if deliveryID != nil {
		idErr = deliveryID.Validate()
	}
	if err := errors.Join(err, idErr, checkChatText(text)); err != nil {
		return SendChatMessageCommand{}, err
	}
	return SendChatMessageCommand{
		sender:     chat.Driver,
		route:      ref,
		deliveryID: deliveryID,
		text:       strings.TrimSpace(text),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// NewCustomerChatMessage writes on the channel of the order's stop.
func NewCustomerChatMessage(accessToken kernel.Token, text string) (SendChatMessageCommand, error) {
	var tokenErr error
	if accessToken.IsEmpty() {
		tokenErr = kernel.ErrTokenIsEmpty
	}
	if err := errors.Join(tokenErr, checkChatText(text)); err != nil {
		return SendChatMessageCommand{}, err
	}
	return SendChatMessageCommand{
		sender:      chat.Client,
		accessToken: accessToken,
		text:        strings.TrimSpace(text),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func checkChatText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errs.NewValueIsRequiredError("text")
	}
	return nil
}

func (c SendChatMessageCommand) Validate() error {
	return c.guard.Validate(ErrSendChatMessageCommandIsNotConstructed)
}

func (c SendChatMessageCommand) Sender() chat.Sender {
	return c.sender
}

func (c SendChatMessageCommand) Route() RouteRef {
	return c.route
}

func (c SendChatMessageCommand) AccessToken() kernel.Token {
	return c.accessToken
}

func (c SendChatMessageCommand) DeliveryID() *kernel.UUID {
	return c.deliveryID
}

func (c SendChatMessageCommand) Text() string {
	return c.text
}
