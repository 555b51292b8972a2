package queries

import (
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrGetLoyaltyHistoryQueryIsNotConstructed = errors.New(
	"GetLoyaltyHistoryQuery must be created via NewGetLoyaltyHistoryQuery constructor",
)

type GetLoyaltyHistoryQuery struct {
	clientID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetLoyaltyHistoryQuery(clientID kernel.UUID) (GetLoyaltyHistoryQuery, error) {
	if err := clientID.Validate(); err != nil {
		return GetLoyaltyHistoryQuery{}, err
	}
	return GetLoyaltyHistoryQuery{clientID: clientID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetLoyaltyHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetLoyaltyHistoryQueryIsNotConstructed)
}

func (q GetLoyaltyHistoryQuery) ClientID() kernel.UUID {
	return q.clientID
}

// LoyaltyEntry is one ledger row. Points are signed.
type LoyaltyEntry struct {
	ID     kernel.UUID
	Points int
	Reason string
	Date   time.Time
}
