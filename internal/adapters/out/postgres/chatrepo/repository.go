// Package chatrepo persists chat messages with GORM.
package chatrepo

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/chat"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageDTO is one chat line. A NULL delivery id marks the route channel.
type MessageDTO struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	RouteID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_chat_route_time,priority:1"`
	DeliveryID *uuid.UUID  `gorm:"type:uuid;index"`
	Sender     chat.Sender `gorm:"type:smallint;not null"`
	Text       string      `gorm:"type:text;not null"`
	SentAt     time.Time   `gorm:"not null;index:idx_chat_route_time,priority:2"`
}

func (MessageDTO) TableName() string {
	return "chat_messages"
}

// GormChatRepository implements ports.ChatRepository.
type GormChatRepository struct {
	db *gorm.DB
}

func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

func (r *GormChatRepository) Add(ctx context.Context, message *chat.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto := MessageDTO{
		ID:         message.ID().Bytes(),
		RouteID:    message.RouteID().Bytes(),
		DeliveryID: kernel.UUIDPtrBytes(message.DeliveryID()),
		Sender:     message.Sender(),
		Text:       message.Text(),
		SentAt:     message.SentAt(),
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormChatRepository) DeleteByRoute(ctx context.Context, routeID kernel.UUID) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("route_id = ?", routeID.Bytes()).Delete(&MessageDTO{}).Error
}
