package commands

import (
	"context"
	"errors"
	"time"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"
)

// PlacedOrder tells the caller which order received the lines.
type PlacedOrder struct {
	OrderID     kernel.UUID
	AccessToken kernel.Token
	Total       kernel.Money
	// Merged is set when the lines were appended to the client's Pending order.
	Merged bool
}

// CreateOrderCommandHandler places orders.
//
// The client is resolved by phone and created as Nueva when unknown; a known
// client's contact data is refreshed. If the client already has a Pending
// order the new lines are merged into it and its link is kept; otherwise a
// new order with a fresh link is opened.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	policy     OrderPolicy
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, policy OrderPolicy) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (PlacedOrder, error) {
	if err := cmd.Validate(); err != nil {
		return PlacedOrder{}, err
	}

	items := make([]*order.Item, 0, len(cmd.Items()))
	for _, line := range cmd.Items() {
		item, err := order.NewItem(kernel.NewUUID(), line.Name, line.Quantity, line.UnitPrice)
		if err != nil {
			return PlacedOrder{}, err
		}
		items = append(items, item)
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PlacedOrder{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	c, err := h.resolveClient(ctx, uow, cmd)
	if err != nil {
		return PlacedOrder{}, err
	}

	orderRepo := uow.OrderRepository()
	pending, err := orderRepo.GetPendingByClient(ctx, c.ID())
	switch {
	case err == nil:
		if err = pending.AddItems(items); err != nil {
			return PlacedOrder{}, err
		}
		if err = orderRepo.Update(ctx, pending); err != nil {
			return PlacedOrder{}, err
		}
		if err = uow.Commit(ctx); err != nil {
			return PlacedOrder{}, err
		}
		return PlacedOrder{OrderID: pending.ID(), AccessToken: pending.AccessToken(), Total: pending.Total(), Merged: true}, nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return PlacedOrder{}, err
	}

	now := time.Now().UTC()
	o, err := order.NewOrder(cmd.OrderID(), c.ID(), cmd.OrderType(), items,
		h.policy.DefaultShipping, kernel.NewToken(), now, now.Add(h.policy.LinkTTL))
	if err != nil {
		return PlacedOrder{}, err
	}
	if err = orderRepo.Add(ctx, o); err != nil {
		return PlacedOrder{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return PlacedOrder{}, err
	}

	return PlacedOrder{OrderID: o.ID(), AccessToken: o.AccessToken(), Total: o.Total()}, nil
}

func (h *CreateOrderCommandHandler) resolveClient(ctx context.Context, uow OrderUoW, cmd CreateOrderCommand) (*client.Client, error) {
	clientRepo := uow.ClientRepository()

	c, err := clientRepo.GetByPhone(ctx, cmd.Phone())
	if err == nil {
		c.UpdateContact(cmd.Name(), cmd.Address())
		return c, clientRepo.Update(ctx, c)
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	c, err = client.NewClient(kernel.NewUUID(), cmd.Name(), cmd.Phone(), cmd.Address())
	if err != nil {
		return nil, err
	}
	return c, clientRepo.Add(ctx, c)
}
