package http

import (
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// CreateRoute handles POST /api/v1/routes.
// Ineligible and unknown orders are skipped; a route with no stops is a 400.
func (s *Server) CreateRoute(ctx echo.Context) error {
	var req CreateRouteRequest
	if err := ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}

	orderIDs := make([]kernel.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := kernel.UUIDFromString(raw)
		if err != nil {
			return s.fail(ctx, badRequest("Invalid order id "+raw))
		}
		orderIDs = append(orderIDs, id)
	}

	routeID := kernel.NewUUID()
	cmd, err := commands.NewCreateRouteCommand(routeID, orderIDs)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.CreateRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return s.respondRoute(ctx, http.StatusCreated, routeID)
}

// ListRoutes handles GET /api/v1/routes. ?open=true keeps Pending and Active routes.
func (s *Server) ListRoutes(ctx echo.Context) error {
	openOnly, err := boolQuery(ctx, "open")
	if err != nil {
		return s.fail(ctx, err)
	}

	routes, err := s.h.ListRoutes.Handle(ctx.Request().Context(), queries.NewListRoutesQuery(openOnly))
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toRouteSummaries(routes))
}

// GetRoute handles GET /api/v1/routes/{id}.
func (s *Server) GetRoute(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respondRoute(ctx, http.StatusOK, id)
}

// StartRoute handles POST /api/v1/routes/{id}/start.
func (s *Server) StartRoute(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	ref, err := commands.RouteByID(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewStartRouteCommand(ref)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.StartRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return s.respondRoute(ctx, http.StatusOK, id)
}

// ReorderRoute handles PUT /api/v1/routes/{id}/reorder with the delivery
// ids in their new order. Entries that are not UUIDs are skipped.
func (s *Server) ReorderRoute(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}

	var raw []string
	if err = ctx.Bind(&raw); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}
	deliveryIDs := make([]kernel.UUID, 0, len(raw))
	for _, value := range raw {
		deliveryID, parseErr := kernel.UUIDFromString(value)
		if parseErr != nil {
			continue
		}
		deliveryIDs = append(deliveryIDs, deliveryID)
	}

	cmd, err := commands.NewReorderRouteCommand(id, deliveryIDs)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.ReorderRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// LiquidateRoute handles POST /api/v1/routes/{id}/liquidate.
func (s *Server) LiquidateRoute(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewLiquidateRouteCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.LiquidateRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return s.respondRoute(ctx, http.StatusOK, id)
}

// DeleteRoute handles DELETE /api/v1/routes/{id}.
func (s *Server) DeleteRoute(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewDeleteRouteCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.DeleteRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetStaffChat handles GET /api/v1/routes/{id}/chat.
func (s *Server) GetStaffChat(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewStaffChatHistoryQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respondChat(ctx, query)
}

// SendStaffChat handles POST /api/v1/routes/{id}/chat.
func (s *Server) SendStaffChat(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	var req ChatRequest
	if err = ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}
	cmd, err := commands.NewStaffChatMessage(id, req.Text)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.sendChat(ctx, cmd)
}

func (s *Server) respondRoute(ctx echo.Context, status int, id kernel.UUID) error {
	query, err := queries.NewGetRouteQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	view, err := s.h.GetRoute.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(status, toRoute(view))
}

func (s *Server) respondChat(ctx echo.Context, query queries.GetChatHistoryQuery) error {
	messages, err := s.h.GetChat.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toChatMessages(messages))
}

func (s *Server) sendChat(ctx echo.Context, cmd commands.SendChatMessageCommand) error {
	m, err := s.h.SendChatMessage.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, toChatMessage(m))
}
