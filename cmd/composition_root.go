package cmd

import (
	httpin "lastmile/internal/adapters/in/http"
	"lastmile/internal/adapters/out/postgres"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/ports"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB        *gorm.DB
	uowFactory    postgres.GormUnitOfWorkFactory
	subscriptions ports.PushSubscriptionRepository
	notifier      commands.Notifier
	evidence      ports.EvidenceStore
	policy        commands.OrderPolicy
}

func NewCompositionRoot(
	gormDB *gorm.DB,
	subscriptions ports.PushSubscriptionRepository,
	notifier commands.Notifier,
	evidence ports.EvidenceStore,
	policy commands.OrderPolicy,
) CompositionRoot {
	return CompositionRoot{
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		subscriptions: subscriptions,
		notifier:      notifier,
		evidence:      evidence,
		policy:        policy,
	}
}

// Route workflow

func (c *CompositionRoot) CreateCreateRouteCommandHandler() commands.CreateRouteCommandHandler {
	return commands.NewCreateRouteCommandHandler(c.routeUoWFactory())
}

func (c *CompositionRoot) CreateStartRouteCommandHandler() commands.StartRouteCommandHandler {
	return commands.NewStartRouteCommandHandler(c.routeUoWFactory(), c.notifier)
}

func (c *CompositionRoot) CreateReorderRouteCommandHandler() commands.ReorderRouteCommandHandler {
	return commands.NewReorderRouteCommandHandler(c.routeUoWFactory())
}

func (c *CompositionRoot) CreateLiquidateRouteCommandHandler() commands.LiquidateRouteCommandHandler {
	return commands.NewLiquidateRouteCommandHandler(c.routeUoWFactory(), c.notifier)
}

func (c *CompositionRoot) CreateDeleteRouteCommandHandler() commands.DeleteRouteCommandHandler {
	return commands.NewDeleteRouteCommandHandler(c.routeUoWFactory())
}

func (c *CompositionRoot) CreateMarkInTransitCommandHandler() commands.MarkInTransitCommandHandler {
	return commands.NewMarkInTransitCommandHandler(c.routeUoWFactory(), c.notifier)
}

func (c *CompositionRoot) CreateResolveDeliveryCommandHandler() commands.ResolveDeliveryCommandHandler {
	return commands.NewResolveDeliveryCommandHandler(c.routeUoWFactory(), c.evidence, c.notifier)
}

func (c *CompositionRoot) CreateUpdateLocationCommandHandler() commands.UpdateLocationCommandHandler {
	return commands.NewUpdateLocationCommandHandler(c.routeUoWFactory(), c.notifier)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.routeUoWFactory(), c.notifier, c.policy)
}

func (c *CompositionRoot) CreateDeleteOrderCommandHandler() commands.DeleteOrderCommandHandler {
	return commands.NewDeleteOrderCommandHandler(c.routeUoWFactory(), c.notifier)
}

func (c *CompositionRoot) CreateRemoveOrderItemCommandHandler() commands.RemoveOrderItemCommandHandler {
	return commands.NewRemoveOrderItemCommandHandler(c.routeUoWFactory(), c.notifier)
}

// Orders and clients

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.policy)
}

func (c *CompositionRoot) CreateConfirmOrderCommandHandler() commands.ConfirmOrderCommandHandler {
	return commands.NewConfirmOrderCommandHandler(c.orderUoWFactory(), c.notifier)
}

func (c *CompositionRoot) CreateAdjustLoyaltyCommandHandler() commands.AdjustLoyaltyCommandHandler {
	return commands.NewAdjustLoyaltyCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateUpdateClientCommandHandler() commands.UpdateClientCommandHandler {
	return commands.NewUpdateClientCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateDeleteClientCommandHandler() commands.DeleteClientCommandHandler {
	return commands.NewDeleteClientCommandHandler(c.orderUoWFactory())
}

// Chat and push

func (c *CompositionRoot) CreateSendChatMessageCommandHandler() commands.SendChatMessageCommandHandler {
	return commands.NewSendChatMessageCommandHandler(c.chatUoWFactory(), c.notifier)
}

func (c *CompositionRoot) CreateSubscribePushCommandHandler() commands.SubscribePushCommandHandler {
	return commands.NewSubscribePushCommandHandler(c.chatUoWFactory(), c.subscriptions)
}

func (c *CompositionRoot) CreateUnsubscribePushCommandHandler() commands.UnsubscribePushCommandHandler {
	return commands.NewUnsubscribePushCommandHandler(c.subscriptions)
}

func (c *CompositionRoot) CreatePrunePushSubscriptionsCommandHandler() commands.PrunePushSubscriptionsCommandHandler {
	return commands.NewPrunePushSubscriptionsCommandHandler(c.subscriptions)
}

// Queries

func (c *CompositionRoot) CreateListRoutesQueryHandler() queries.ListRoutesQueryHandler {
	return queries.NewListRoutesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRouteQueryHandler() queries.GetRouteQueryHandler {
	return queries.NewGetRouteQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCustomerViewQueryHandler() queries.GetCustomerViewQueryHandler {
	return queries.NewGetCustomerViewQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetChatHistoryQueryHandler() queries.GetChatHistoryQueryHandler {
	return queries.NewGetChatHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetLoyaltySummaryQueryHandler() queries.GetLoyaltySummaryQueryHandler {
	return queries.NewGetLoyaltySummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetLoyaltyHistoryQueryHandler() queries.GetLoyaltyHistoryQueryHandler {
	return queries.NewGetLoyaltyHistoryQueryHandler(c.gormDB)
}

// HTTPHandlers bundles every use case the HTTP server exposes.
func (c *CompositionRoot) HTTPHandlers() httpin.Handlers {
	return httpin.Handlers{
		CreateRoute:       c.CreateCreateRouteCommandHandler(),
		StartRoute:        c.CreateStartRouteCommandHandler(),
		ReorderRoute:      c.CreateReorderRouteCommandHandler(),
		LiquidateRoute:    c.CreateLiquidateRouteCommandHandler(),
		DeleteRoute:       c.CreateDeleteRouteCommandHandler(),
		MarkInTransit:     c.CreateMarkInTransitCommandHandler(),
		ResolveDelivery:   c.CreateResolveDeliveryCommandHandler(),
		UpdateLocation:    c.CreateUpdateLocationCommandHandler(),
		SendChatMessage:   c.CreateSendChatMessageCommandHandler(),
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		ConfirmOrder:      c.CreateConfirmOrderCommandHandler(),
		ChangeOrderStatus: c.CreateChangeOrderStatusCommandHandler(),
		DeleteOrder:       c.CreateDeleteOrderCommandHandler(),
		RemoveOrderItem:   c.CreateRemoveOrderItemCommandHandler(),
		AdjustLoyalty:     c.CreateAdjustLoyaltyCommandHandler(),
		UpdateClient:      c.CreateUpdateClientCommandHandler(),
		DeleteClient:      c.CreateDeleteClientCommandHandler(),
		SubscribePush:     c.CreateSubscribePushCommandHandler(),
		UnsubscribePush:   c.CreateUnsubscribePushCommandHandler(),

		ListRoutes:     c.CreateListRoutesQueryHandler(),
		GetRoute:       c.CreateGetRouteQueryHandler(),
		GetCustomer:    c.CreateGetCustomerViewQueryHandler(),
		GetChat:        c.CreateGetChatHistoryQueryHandler(),
		LoyaltySummary: c.CreateGetLoyaltySummaryQueryHandler(),
		LoyaltyHistory: c.CreateGetLoyaltyHistoryQueryHandler(),
	}
}

func (c *CompositionRoot) routeUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) chatUoWFactory() commands.ChatUoWFactory {
	return FuncChatUoWFactory(func() commands.ChatUoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncChatUoWFactory func() commands.ChatUoW

func (f FuncChatUoWFactory) Create() commands.ChatUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
