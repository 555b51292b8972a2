package ports

import (
	"context"

	"lastmile/internal/core/domain/model/loyalty"
)

// LoyaltyRepository appends rows to the points ledger. Rows are never updated.
type LoyaltyRepository interface {
	Add(ctx context.Context, transactions ...*loyalty.Transaction) error
}
