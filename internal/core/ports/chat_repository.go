package ports

import (
	"context"

	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/kernel"
)

// ChatRepository appends chat messages and clears them with their route.
type ChatRepository interface {
	Add(ctx context.Context, message *chat.Message) error
	DeleteByRoute(ctx context.Context, routeID kernel.UUID) error
}
