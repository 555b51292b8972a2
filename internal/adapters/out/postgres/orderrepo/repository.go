package orderrepo

import (
	"context"
	"errors"

	"lastmile/internal/adapters/out/postgres/pgerrs"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order with its items.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.Translate(err, "accessToken")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves every column of an existing order, so a cleared route link or
// postponement is written as NULL. New item lines are inserted, existing ones
// left alone and lines dropped from the aggregate deleted.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&OrderDTO{}).Where("id = ?", dto.ID).Select("*").Omit("Items").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	stale := db.Where("order_id = ?", dto.ID)
	if len(dto.Items) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto.Items).Error; err != nil {
			return err
		}
		kept := make([]uuid.UUID, 0, len(dto.Items))
		for _, item := range dto.Items {
			kept = append(kept, item.ID)
		}
		stale = stale.Where("id NOT IN ?", kept)
	}
	if err := stale.Delete(&OrderItemDTO{}).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Delete removes an order; its item lines go with it.
func (r *GormOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&OrderDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return nil
}

// Get retrieves and locks an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, true, id.String(), "id = ?", id.Bytes())
}

func (r *GormOrderRepository) GetByAccessToken(ctx context.Context, token kernel.Token) (*order.Order, error) {
	if token.IsEmpty() {
		return nil, kernel.ErrTokenIsEmpty
	}
	return r.first(ctx, true, token.Prefix(8), "access_token = ?", token.String())
}

func (r *GormOrderRepository) Find(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, false, id.String(), "id = ?", id.Bytes())
}

func (r *GormOrderRepository) FindByAccessToken(ctx context.Context, token kernel.Token) (*order.Order, error) {
	if token.IsEmpty() {
		return nil, kernel.ErrTokenIsEmpty
	}
	return r.first(ctx, false, token.Prefix(8), "access_token = ?", token.String())
}

func (r *GormOrderRepository) GetPendingByClient(ctx context.Context, clientID kernel.UUID) (*order.Order, error) {
	if err := clientID.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, true, "pending order of "+clientID.String(),
		"client_id = ? AND status = ?", clientID.Bytes(), order.Pending)
}

// GetMany locks the rows in id order, so two transactions locking
// overlapping sets queue instead of deadlocking.
func (r *GormOrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	if len(ids) == 0 {
		return []*order.Order{}, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", byPosition).
		Order("id").
		Find(&dtos, "id IN ?", raw).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]OrderDTO, len(dtos))
	for _, dto := range dtos {
		byID[dto.ID] = dto
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, id := range raw {
		dto, ok := byID[id]
		if !ok {
			continue
		}
		delete(byID, id)
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *GormOrderRepository) CountByClient(ctx context.Context, clientID kernel.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("client_id = ?", clientID.Bytes()).Count(&count).Error
	return count, err
}

// first reads one order, FOR UPDATE when lock is set. Item lines come from
// a separate statement and are covered by the order row lock.
func (r *GormOrderRepository) first(ctx context.Context, lock bool, ref string, query string, args ...any) (*order.Order, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto OrderDTO
	err := db.
		Preload("Items", byPosition).
		Where(query, args...).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", ref)
		}
		return nil, err
	}
	return toDomain(dto)
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
