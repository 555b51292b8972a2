package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrAdjustLoyaltyCommandIsNotConstructed = errors.New(
	"AdjustLoyaltyCommand must be created via NewAdjustLoyaltyCommand constructor",
)

// AdjustLoyaltyCommand is a manual points correction by staff. Points are
// signed; the reason ends up in the client's history.
type AdjustLoyaltyCommand struct { //nolint:recvcheck //using for validation
	clientID kernel.UUID
	points   int
	reason   string

	guard guard.ConstructorGuard
}

// NewAdjustLoyaltyCommand checks the client id only. Zero points and a blank
// reason are rejected by the ledger itself.
func NewAdjustLoyaltyCommand(clientID kernel.UUID, points int, reason string) (AdjustLoyaltyCommand, error) {
	if err := clientID.Validate(); err != nil {
		return AdjustLoyaltyCommand{}, err
	}
	return AdjustLoyaltyCommand{
		clientID: clientID,
		points:   points,
		reason:   strings.TrimSpace(reason),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c AdjustLoyaltyCommand) Validate() error {
	return c.guard.Validate(ErrAdjustLoyaltyCommandIsNotConstructed)
}

func (c AdjustLoyaltyCommand) ClientID() kernel.UUID {
	return c.clientID
}

func (c AdjustLoyaltyCommand) Points() int {
	return c.points
}

func (c AdjustLoyaltyCommand) Reason() string {
	return c.reason
}
