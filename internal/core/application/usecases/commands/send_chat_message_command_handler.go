package commands

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/errs"
)

// SendChatMessageCommandHandler stores a chat line and fans it out.
type SendChatMessageCommandHandler struct {
	uowFactory ChatUoWFactory
	notifier   Notifier
	fanOut     services.ChatFanOut
}

func NewSendChatMessageCommandHandler(uowFactory ChatUoWFactory, notifier Notifier) SendChatMessageCommandHandler {
	return SendChatMessageCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		fanOut:     services.NewChatFanOut(),
	}
}

// Handle returns the stored message. A customer whose order is not on a
// route gets errs.InvalidStateError, an expired link errs.ExpiredError.
func (h *SendChatMessageCommandHandler) Handle(ctx context.Context, cmd SendChatMessageCommand) (*chat.Message, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	r, o, deliveryID, err := h.resolveChannel(ctx, uow, cmd, now)
	if err != nil {
		return nil, err
	}

	m, err := chat.NewMessage(kernel.NewUUID(), r.ID(), deliveryID, cmd.Sender(), cmd.Text(), now)
	if err != nil {
		return nil, err
	}
	if err = uow.ChatRepository().Add(ctx, m); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.Notify(ctx, h.fanOut.Events(m, r, o))
	return m, nil
}

func (h *SendChatMessageCommandHandler) resolveChannel(
	ctx context.Context,
	uow ChatUoW,
	cmd SendChatMessageCommand,
	now time.Time,
) (*route.Route, *order.Order, *kernel.UUID, error) {
	if cmd.Sender() == chat.Client {
		return h.customerChannel(ctx, uow, cmd.AccessToken(), now)
	}

	r, err := findRoute(ctx, uow.RouteRepository(), cmd.Route())
	if err != nil {
		return nil, nil, nil, err
	}
	if cmd.DeliveryID() == nil {
		return r, nil, nil, nil
	}

	d, err := r.Delivery(*cmd.DeliveryID())
	if err != nil {
		return nil, nil, nil, err
	}
	o, err := uow.OrderRepository().Find(ctx, d.OrderID())
	if err != nil {
		return nil, nil, nil, err
	}
	id := d.ID()
	return r, o, &id, nil
}

func (h *SendChatMessageCommandHandler) customerChannel(
	ctx context.Context,
	uow ChatUoW,
	token kernel.Token,
	now time.Time,
) (*route.Route, *order.Order, *kernel.UUID, error) {
	o, err := uow.OrderRepository().FindByAccessToken(ctx, token)
	if err != nil {
		return nil, nil, nil, err
	}
	if err = o.CheckAccess(now); err != nil {
		return nil, nil, nil, err
	}
	if o.RouteID() == nil {
		return nil, nil, nil, errs.NewInvalidStateError("order", "the order is not on a route yet")
	}

	r, err := uow.RouteRepository().Find(ctx, *o.RouteID())
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := r.DeliveryForOrder(o.ID())
	if err != nil {
		return nil, nil, nil, err
	}
	id := d.ID()
	return r, o, &id, nil
}
