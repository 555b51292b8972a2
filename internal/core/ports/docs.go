// Package ports defines the contracts between the delivery domain and infrastructure:
// repositories for routes, orders, clients, loyalty, chat and push subscriptions,
// the unit of work that spans them, and the outbound notification channels.
package ports
