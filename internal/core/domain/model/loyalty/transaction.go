package loyalty

import (
	"errors"
	"strings"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/guard"
)

// ErrTransactionIsNotConstructed is returned when a zero-value Transaction is used.
var ErrTransactionIsNotConstructed = errors.New("Transaction must be created via NewTransaction constructor")

// Transaction is an append-only ledger row. Points are signed: accruals and
// gifts are positive, reversals and redemptions negative.
type Transaction struct {
	id       kernel.UUID
	clientID kernel.UUID
	points   int
	reason   string
	date     time.Time
	guard    guard.ConstructorGuard
}

// NewTransaction validates a ledger row. Rows are immutable, so the same
// constructor restores them from persistence.
func NewTransaction(id, clientID kernel.UUID, points int, reason string, date time.Time) (*Transaction, error) {
	reason = strings.TrimSpace(reason)

	var pointsErr, reasonErr error
	if points == 0 {
		pointsErr = errs.NewValueIsInvalidErrorWithCause("points", errors.New("must not be zero"))
	}
	if reason == "" {
		reasonErr = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(id.Validate(), clientID.Validate(), pointsErr, reasonErr); err != nil {
		return nil, err
	}

	return &Transaction{
		id:       id,
		clientID: clientID,
		points:   points,
		reason:   reason,
		date:     date,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (t *Transaction) Validate() error {
	if t == nil {
		return ErrTransactionIsNotConstructed
	}
	return t.guard.Validate(ErrTransactionIsNotConstructed)
}

func (t *Transaction) ID() kernel.UUID {
	return t.id
}

func (t *Transaction) ClientID() kernel.UUID {
	return t.clientID
}

func (t *Transaction) Points() int {
	return t.points
}

func (t *Transaction) Reason() string {
	return t.reason
}

func (t *Transaction) Date() time.Time {
	return t.date
}
