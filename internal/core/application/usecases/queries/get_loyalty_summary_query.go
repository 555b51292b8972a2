package queries

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrGetLoyaltySummaryQueryIsNotConstructed = errors.New(
	"GetLoyaltySummaryQuery must be created via NewGetLoyaltySummaryQuery constructor",
)

type GetLoyaltySummaryQuery struct {
	clientID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetLoyaltySummaryQuery(clientID kernel.UUID) (GetLoyaltySummaryQuery, error) {
	if err := clientID.Validate(); err != nil {
		return GetLoyaltySummaryQuery{}, err
	}
	return GetLoyaltySummaryQuery{clientID: clientID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetLoyaltySummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetLoyaltySummaryQueryIsNotConstructed)
}

func (q GetLoyaltySummaryQuery) ClientID() kernel.UUID {
	return q.clientID
}

// LoyaltySummary is a client's balance and tier. The tier follows lifetime
// points; PointsToNextTier is zero once the top tier is reached.
type LoyaltySummary struct {
	ClientID         kernel.UUID
	Name             string
	Category         string
	CurrentPoints    int
	LifetimePoints   int
	Tier             string
	NextTier         string
	PointsToNextTier int
}
