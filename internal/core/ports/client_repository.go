package ports

import (
	"context"

	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"
)

// ClientRepository defines the persistence contract for client aggregates,
// loyalty balances included. Every read locks the rows it returns until the
// unit of work ends, so concurrent credits and debits queue up.
type ClientRepository interface {
	// Add persists a new client.
	// Returns errs.ConflictError when the phone is already registered.
	Add(ctx context.Context, aggregate *client.Client) error

	// Update persists contact data, category and balances.
	Update(ctx context.Context, aggregate *client.Client) error

	// Get retrieves a client by its identifier.
	Get(ctx context.Context, id kernel.UUID) (*client.Client, error)

	// GetByPhone retrieves the client registered with phone.
	GetByPhone(ctx context.Context, phone string) (*client.Client, error)

	// GetMany retrieves the clients with the given ids, locked in id order.
	// Unknown ids are skipped.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*client.Client, error)

	// Delete removes a client. Callers check first that no order references it.
	Delete(ctx context.Context, id kernel.UUID) error
}
