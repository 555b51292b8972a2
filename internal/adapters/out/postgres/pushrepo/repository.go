// Package pushrepo stores push notification device registrations with GORM.
package pushrepo

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/subscription"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionDTO is one registered device.
type SubscriptionDTO struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Role        subscription.Role `gorm:"type:smallint;not null;index"`
	DeviceToken string            `gorm:"type:varchar(512);not null;uniqueIndex"`
	ClientID    *uuid.UUID        `gorm:"type:uuid;index"`
	RouteToken  string            `gorm:"type:varchar(64);index"`
	CreatedAt   time.Time         `gorm:"not null"`
	LastUsedAt  time.Time         `gorm:"not null;index"`
}

func (SubscriptionDTO) TableName() string {
	return "push_subscriptions"
}

// GormPushSubscriptionRepository implements ports.PushSubscriptionRepository.
type GormPushSubscriptionRepository struct {
	db *gorm.DB
}

func NewGormPushSubscriptionRepository(db *gorm.DB) *GormPushSubscriptionRepository {
	return &GormPushSubscriptionRepository{db: db}
}

// Upsert inserts the device or rebinds an existing device token to the new
// audience. The original id and creation time are kept.
func (r *GormPushSubscriptionRepository) Upsert(ctx context.Context, s *subscription.Subscription) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dto := SubscriptionDTO{
		ID:          s.ID().Bytes(),
		Role:        s.Role(),
		DeviceToken: s.DeviceToken(),
		ClientID:    kernel.UUIDPtrBytes(s.ClientID()),
		RouteToken:  s.RouteToken().String(),
		CreatedAt:   s.CreatedAt(),
		LastUsedAt:  s.LastUsedAt(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "client_id", "route_token", "last_used_at"}),
	}).Create(&dto).Error
}

func (r *GormPushSubscriptionRepository) DeleteByDeviceToken(ctx context.Context, deviceToken string) error {
	return r.db.WithContext(ctx).Where("device_token = ?", deviceToken).Delete(&SubscriptionDTO{}).Error
}

func (r *GormPushSubscriptionRepository) FindByClient(
	ctx context.Context,
	clientID kernel.UUID,
) ([]*subscription.Subscription, error) {
	return r.find(ctx, "role = ? AND client_id = ?", subscription.ClientRole, clientID.Bytes())
}

func (r *GormPushSubscriptionRepository) FindByRouteToken(
	ctx context.Context,
	token kernel.Token,
) ([]*subscription.Subscription, error) {
	return r.find(ctx, "role = ? AND route_token = ?", subscription.DriverRole, token.String())
}

func (r *GormPushSubscriptionRepository) FindByRole(
	ctx context.Context,
	role subscription.Role,
) ([]*subscription.Subscription, error) {
	return r.find(ctx, "role = ?", role)
}

func (r *GormPushSubscriptionRepository) Touch(ctx context.Context, deviceTokens []string, at time.Time) error {
	if len(deviceTokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&SubscriptionDTO{}).
		Where("device_token IN ? AND last_used_at < ?", deviceTokens, at).
		Update("last_used_at", at).Error
}

func (r *GormPushSubscriptionRepository) DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("last_used_at < ?", cutoff).Delete(&SubscriptionDTO{})
	return result.RowsAffected, result.Error
}

func (r *GormPushSubscriptionRepository) find(
	ctx context.Context,
	query string,
	args ...any,
) ([]*subscription.Subscription, error) {
	var dtos []SubscriptionDTO
	if err := r.db.WithContext(ctx).Where(query, args...).Find(&dtos).Error; err != nil {
		return nil, err
	}

	subs := make([]*subscription.Subscription, 0, len(dtos))
	for _, dto := range dtos {
		id, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		clientID, err := kernel.UUIDPtrFromBytes(dto.ClientID)
		if err != nil {
			return nil, err
		}
		s, err := subscription.RestoreSubscription(id, dto.Role, dto.DeviceToken, clientID,
			kernel.Token(dto.RouteToken), dto.CreatedAt, dto.LastUsedAt)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, nil
}
