package http

import (
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// GetCustomerOrder handles GET /api/v1/pedido/{accessToken}.
// An expired link answers 410.
func (s *Server) GetCustomerOrder(ctx echo.Context) error {
	token, err := tokenParam(ctx, "accessToken")
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respondCustomer(ctx, token)
}

// ConfirmOrder handles POST /api/v1/pedido/{accessToken}/confirm.
func (s *Server) ConfirmOrder(ctx echo.Context) error {
	token, err := tokenParam(ctx, "accessToken")
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewConfirmOrderCommand(token)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err = s.h.ConfirmOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return s.respondCustomer(ctx, token)
}

// GetCustomerChat handles GET /api/v1/pedido/{accessToken}/chat.
func (s *Server) GetCustomerChat(ctx echo.Context) error {
	token, err := tokenParam(ctx, "accessToken")
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewCustomerChatHistoryQuery(token)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.respondChat(ctx, query)
}

// SendCustomerChat handles POST /api/v1/pedido/{accessToken}/chat.
func (s *Server) SendCustomerChat(ctx echo.Context) error {
	token, err := tokenParam(ctx, "accessToken")
	if err != nil {
		return s.fail(ctx, err)
	}
	var req ChatRequest
	if err = ctx.Bind(&req); err != nil {
		return s.fail(ctx, badRequest("Invalid request body"))
	}
	cmd, err := commands.NewCustomerChatMessage(token, req.Text)
	if err != nil {
		return s.fail(ctx, err)
	}
	return s.sendChat(ctx, cmd)
}

func (s *Server) respondCustomer(ctx echo.Context, token kernel.Token) error {
	query, err := queries.NewGetCustomerViewQuery(token)
	if err != nil {
		return s.fail(ctx, err)
	}
	view, err := s.h.GetCustomer.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toCustomerOrder(view))
}
