package http

import (
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/subscription"

	"github.com/labstack/echo/v4"
)

// Subscribe handles POST /api/v1/push/subscriptions. Clients send their
// order access token, drivers their route token, admins none.
func (s *Server) Subscribe(ctx echo.Context) error {
	var req SubscribeRequest
	if err := ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}

	role, err := subscription.ParseRole(req.Role)
	if err != nil {
		return s.fail(ctx, err)
	}
	var link kernel.Token
	if req.Token != "" {
		if link, err = kernel.TokenFromString(req.Token); err != nil {
			return s.fail(ctx, err)
		}
	}

	cmd, err := commands.NewSubscribePushCommand(role, req.DeviceToken, link)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.SubscribePush.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Unsubscribe handles DELETE /api/v1/push/subscriptions?deviceToken=.
func (s *Server) Unsubscribe(ctx echo.Context) error {
	cmd, err := commands.NewUnsubscribePushCommand(ctx.QueryParam("deviceToken"))
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.UnsubscribePush.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
