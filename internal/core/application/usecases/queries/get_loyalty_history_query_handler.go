package queries

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetLoyaltyHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetLoyaltyHistoryQueryHandler(db *gorm.DB) GetLoyaltyHistoryQueryHandler {
	return GetLoyaltyHistoryQueryHandler{db: db}
}

// Handle returns the client's ledger newest first.
func (h GetLoyaltyHistoryQueryHandler) Handle(ctx context.Context, query GetLoyaltyHistoryQuery) ([]LoyaltyEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	var clients int64
	if err := db.Table("clients").Where("id = ?", query.ClientID().Bytes()).Count(&clients).Error; err != nil {
		return nil, err
	}
	if clients == 0 {
		return nil, errs.NewObjectNotFoundError("client", query.ClientID().String())
	}

	rows, err := db.Raw(`
		SELECT id, points, reason, date
		FROM loyalty_transactions
		WHERE client_id = ?
		ORDER BY date DESC, id DESC
	`, query.ClientID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]LoyaltyEntry, 0)
	for rows.Next() {
		var (
			entry LoyaltyEntry
			id    uuid.UUID
		)
		if err = rows.Scan(&id, &entry.Points, &entry.Reason, &entry.Date); err != nil {
			return nil, err
		}
		if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
