package http

import (
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CreateOrder handles POST /api/v1/orders. A returning client with a
// Pending order gets the new items merged into it.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}

	orderType := order.Delivery
	if req.OrderType != "" {
		parsed, err := order.ParseType(req.OrderType)
		if err != nil {
			return s.fail(ctx, err)
		}
		orderType = parsed
	}

	items := make([]commands.ItemLine, 0, len(req.Items))
	for _, item := range req.Items {
		amount, err := decimal.NewFromString(item.UnitPrice.String())
		if err != nil {
			return s.fail(ctx, badRequest("Invalid unitPrice for "+item.Name))
		}
		price, err := kernel.NewMoney(amount)
		if err != nil {
			return s.fail(ctx, err)
		}
		items = append(items, commands.ItemLine{Name: item.Name, Quantity: item.Quantity, UnitPrice: price})
	}

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), req.Name, req.Phone, req.Address, orderType, items)
	if err != nil {
		return s.fail(ctx, err)
	}
	placed, err := s.h.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	status := http.StatusCreated
	if placed.Merged {
		status = http.StatusOK
	}
	return ctx.JSON(status, toPlacedOrder(placed))
}

// ChangeOrderStatus handles PATCH /api/v1/orders/{id}/status. Omitted
// status or orderType leaves that attribute unchanged.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	var req ChangeOrderStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}

	status := order.Unknown
	if req.Status != "" {
		if status, err = order.ParseStatus(req.Status); err != nil {
			return s.fail(ctx, err)
		}
	}
	orderType := order.UnknownType
	if req.OrderType != "" {
		if orderType, err = order.ParseType(req.OrderType); err != nil {
			return s.fail(ctx, err)
		}
	}

	cmd, err := commands.NewChangeOrderStatusCommand(id, status, orderType, req.PostponedAt, req.PostponedNote)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.ChangeOrderStatus.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// DeleteOrder handles DELETE /api/v1/orders/{id}. An order whose stop is in
// transit or resolved is refused.
func (s *Server) DeleteOrder(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewDeleteOrderCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.DeleteOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RemoveOrderItem handles DELETE /api/v1/orders/{id}/items/{itemId}.
func (s *Server) RemoveOrderItem(ctx echo.Context) error {
	orderID, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	itemID, err := uuidParam(ctx, "itemId")
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewRemoveOrderItemCommand(orderID, itemID)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.RemoveOrderItem.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
