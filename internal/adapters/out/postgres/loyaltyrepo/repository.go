// Package loyaltyrepo appends loyalty ledger rows with GORM.
package loyaltyrepo

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/loyalty"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionDTO is one ledger row.
type TransactionDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index:idx_loyalty_client_date,priority:1"`
	Points   int       `gorm:"type:int;not null"`
	Reason   string    `gorm:"type:varchar(255);not null"`
	Date     time.Time `gorm:"not null;index:idx_loyalty_client_date,priority:2"`
}

func (TransactionDTO) TableName() string {
	return "loyalty_transactions"
}

// GormLoyaltyRepository implements ports.LoyaltyRepository.
type GormLoyaltyRepository struct {
	db *gorm.DB
}

func NewGormLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// Add inserts the rows in one statement.
func (r *GormLoyaltyRepository) Add(ctx context.Context, transactions ...*loyalty.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	dtos := make([]TransactionDTO, 0, len(transactions))
	for _, tx := range transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, TransactionDTO{
			ID:       tx.ID().Bytes(),
			ClientID: tx.ClientID().Bytes(),
			Points:   tx.Points(),
			Reason:   tx.Reason(),
			Date:     tx.Date(),
		})
	}

	return r.db.WithContext(ctx).Create(&dtos).Error
}
