package commands

import (
	"context"
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/guard"
)

var ErrRouteRefIsNotConstructed = errors.New("RouteRef must be created via RouteByID or RouteByDriverToken")

// RouteRef points at a route either by id, as staff do, or by the opaque
// token of the driver's link.
type RouteRef struct {
	id          kernel.UUID
	driverToken kernel.Token

	guard guard.ConstructorGuard
}

func RouteByID(id kernel.UUID) (RouteRef, error) {
	if err := id.Validate(); err != nil {
		return RouteRef{}, err
	}
	return RouteRef{id: id, guard: guard.NewConstructorGuard()}, nil
}

func RouteByDriverToken(token kernel.Token) (RouteRef, error) {
	if token.IsEmpty() {
		return RouteRef{}, kernel.ErrTokenIsEmpty
	}
	return RouteRef{driverToken: token, guard: guard.NewConstructorGuard()}, nil
}

func (r RouteRef) Validate() error {
	return r.guard.Validate(ErrRouteRefIsNotConstructed)
}

// IsDriverLink reports whether the route is addressed through the driver token.
func (r RouteRef) IsDriverLink() bool {
	return !r.driverToken.IsEmpty()
}

func (r RouteRef) ID() kernel.UUID {
	return r.id
}

func (r RouteRef) DriverToken() kernel.Token {
	return r.driverToken
}

// lockRoute loads and locks the referenced route.
func lockRoute(ctx context.Context, repo ports.RouteRepository, ref RouteRef) (*route.Route, error) {
	if ref.IsDriverLink() {
		return repo.GetByDriverToken(ctx, ref.driverToken)
	}
	return repo.Get(ctx, ref.id)
}

// findRoute loads the referenced route without locking it.
func findRoute(ctx context.Context, repo ports.RouteRepository, ref RouteRef) (*route.Route, error) {
	if ref.IsDriverLink() {
		return repo.FindByDriverToken(ctx, ref.driverToken)
	}
	return repo.Find(ctx, ref.id)
}

// loadParticipants reads the orders on the route's stops and their clients.
func loadParticipants(ctx context.Context, uow UoW, r *route.Route) (services.Participants, error) {
	orders, err := uow.OrderRepository().GetMany(ctx, r.OrderIDs())
	if err != nil {
		return services.Participants{}, err
	}

	seen := make(map[kernel.UUID]struct{}, len(orders))
	clientIDs := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.ClientID()]; ok {
			continue
		}
		seen[o.ClientID()] = struct{}{}
		clientIDs = append(clientIDs, o.ClientID())
	}

	clients, err := uow.ClientRepository().GetMany(ctx, clientIDs)
	if err != nil {
		return services.Participants{}, err
	}
	return services.NewParticipants(orders, clients), nil
}

// dropRoute deletes a route's chat, then its evidence, stops and row.
func dropRoute(ctx context.Context, uow UoW, id kernel.UUID) error {
	if err := uow.ChatRepository().DeleteByRoute(ctx, id); err != nil {
		return err
	}
	return uow.RouteRepository().Delete(ctx, id)
}

// saveOutcome persists the route and everything the lifecycle reported as changed.
func saveOutcome(ctx context.Context, uow UoW, r *route.Route, out services.Outcome) error {
	if err := uow.RouteRepository().Update(ctx, r); err != nil {
		return err
	}
	for _, o := range out.Orders {
		if err := uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
	}
	for _, c := range out.Clients {
		if err := uow.ClientRepository().Update(ctx, c); err != nil {
			return err
		}
	}
	if len(out.Ledger) > 0 {
		if err := uow.LoyaltyRepository().Add(ctx, out.Ledger...); err != nil {
			return err
		}
	}
	return nil
}
