package http

import (
	"log/slog"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// Handlers groups the use cases the server exposes.
type Handlers struct {
	// Command handlers
	CreateRoute       commands.CreateRouteCommandHandler
	StartRoute        commands.StartRouteCommandHandler
	ReorderRoute      commands.ReorderRouteCommandHandler
	LiquidateRoute    commands.LiquidateRouteCommandHandler
	DeleteRoute       commands.DeleteRouteCommandHandler
	MarkInTransit     commands.MarkInTransitCommandHandler
	ResolveDelivery   commands.ResolveDeliveryCommandHandler
	UpdateLocation    commands.UpdateLocationCommandHandler
	SendChatMessage   commands.SendChatMessageCommandHandler
	CreateOrder       commands.CreateOrderCommandHandler
	ConfirmOrder      commands.ConfirmOrderCommandHandler
	ChangeOrderStatus commands.ChangeOrderStatusCommandHandler
	DeleteOrder       commands.DeleteOrderCommandHandler
	RemoveOrderItem   commands.RemoveOrderItemCommandHandler
	AdjustLoyalty     commands.AdjustLoyaltyCommandHandler
	UpdateClient      commands.UpdateClientCommandHandler
	DeleteClient      commands.DeleteClientCommandHandler
	SubscribePush     commands.SubscribePushCommandHandler
	UnsubscribePush   commands.UnsubscribePushCommandHandler

	// Query handlers
	ListRoutes     queries.ListRoutesQueryHandler
	GetRoute       queries.GetRouteQueryHandler
	GetCustomer    queries.GetCustomerViewQueryHandler
	GetChat        queries.GetChatHistoryQueryHandler
	LoyaltySummary queries.GetLoyaltySummaryQueryHandler
	LoyaltyHistory queries.GetLoyaltyHistoryQueryHandler
}

// Server handles HTTP requests and coordinates between the handlers and
// the application use cases.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{h: h, logger: logger.With("component", "http_server")}
}

// RegisterHandlers mounts every API route under BasePath.
func RegisterHandlers(e *echo.Echo, s *Server) {
	api := e.Group(BasePath)

	api.POST("/routes", s.CreateRoute)
	api.GET("/routes", s.ListRoutes)
	api.GET("/routes/:id", s.GetRoute)
	api.POST("/routes/:id/start", s.StartRoute)
	api.PUT("/routes/:id/reorder", s.ReorderRoute)
	api.POST("/routes/:id/liquidate", s.LiquidateRoute)
	api.DELETE("/routes/:id", s.DeleteRoute)
	api.GET("/routes/:id/chat", s.GetStaffChat)
	api.POST("/routes/:id/chat", s.SendStaffChat)

	api.GET("/driver/:routeToken", s.GetDriverRoute)
	api.POST("/driver/:routeToken/start", s.StartDriverRoute)
	api.POST("/driver/:routeToken/transit/:deliveryId", s.MarkInTransit)
	api.POST("/driver/:routeToken/deliver/:deliveryId", s.Deliver)
	api.POST("/driver/:routeToken/fail/:deliveryId", s.FailDelivery)
	api.POST("/driver/:routeToken/location", s.UpdateLocation)
	api.GET("/driver/:routeToken/chat", s.GetDriverChat)
	api.POST("/driver/:routeToken/chat", s.SendDriverChat)

	api.GET("/pedido/:accessToken", s.GetCustomerOrder)
	api.POST("/pedido/:accessToken/confirm", s.ConfirmOrder)
	api.GET("/pedido/:accessToken/chat", s.GetCustomerChat)
	api.POST("/pedido/:accessToken/chat", s.SendCustomerChat)

	api.POST("/orders", s.CreateOrder)
	api.PATCH("/orders/:id/status", s.ChangeOrderStatus)
	api.DELETE("/orders/:id", s.DeleteOrder)
	api.DELETE("/orders/:id/items/:itemId", s.RemoveOrderItem)

	api.PUT("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.DeleteClient)
	api.GET("/clients/:id/loyalty", s.GetLoyaltySummary)
	api.GET("/clients/:id/loyalty/history", s.GetLoyaltyHistory)
	api.POST("/clients/:id/loyalty/adjust", s.AdjustLoyalty)

	api.POST("/push/subscriptions", s.Subscribe)
	api.DELETE("/push/subscriptions", s.Unsubscribe)
}
