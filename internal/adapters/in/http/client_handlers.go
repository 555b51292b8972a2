package http

import (
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// UpdateClient handles PUT /api/v1/clients/{id}.
func (s *Server) UpdateClient(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	var req UpdateClientRequest
	if err = ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}
	cmd, err := commands.NewUpdateClientCommand(id, req.Name, req.Phone, req.Address, req.Category)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.UpdateClient.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// DeleteClient handles DELETE /api/v1/clients/{id}. A client any order
// still references is refused.
func (s *Server) DeleteClient(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewDeleteClientCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.DeleteClient.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetLoyaltySummary handles GET /api/v1/clients/{id}/loyalty.
func (s *Server) GetLoyaltySummary(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetLoyaltySummaryQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	summary, err := s.h.LoyaltySummary.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toLoyaltySummary(summary))
}

// GetLoyaltyHistory handles GET /api/v1/clients/{id}/loyalty/history.
func (s *Server) GetLoyaltyHistory(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetLoyaltyHistoryQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	entries, err := s.h.LoyaltyHistory.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toLoyaltyEntries(entries))
}

// AdjustLoyalty handles POST /api/v1/clients/{id}/loyalty/adjust.
func (s *Server) AdjustLoyalty(ctx echo.Context) error {
	id, err := uuidParam(ctx, "id")
	if err != nil {
		return s.fail(ctx, err)
	}
	var req AdjustLoyaltyRequest
	if err = ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}
	cmd, err := commands.NewAdjustLoyaltyCommand(id, req.Points, req.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.AdjustLoyalty.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return s.GetLoyaltySummary(ctx)
}
