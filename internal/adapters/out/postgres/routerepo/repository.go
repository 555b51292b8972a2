package routerepo

import (
	"context"
	"errors"

	"lastmile/internal/adapters/out/postgres/pgerrs"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRouteRepository implements ports.RouteRepository using GORM.
//
// Reads lock the route row with SELECT ... FOR UPDATE. Outside a transaction
// the lock is released as soon as the statement ends.
type GormRouteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormRouteRepository(db *gorm.DB, tracker aggregateTracker) *GormRouteRepository {
	return &GormRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new route with its stops.
func (r *GormRouteRepository) Add(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.Translate(err, "driverToken")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves the route, upserts its stops and evidence and deletes the
// stops no longer on the route.
//
// Reordering swaps sort orders between stops, which would trip the unique
// (route_id, sort_order) index halfway through the upsert, so stops are
// first parked on negative sort orders.
func (r *GormRouteRepository) Update(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&RouteDTO{}).Where("id = ?", dto.ID).Select("*").Omit("Deliveries").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	kept := make([]uuid.UUID, 0, len(dto.Deliveries))
	for _, d := range dto.Deliveries {
		kept = append(kept, d.ID)
	}

	stale := db.Where("route_id = ?", dto.ID)
	if len(kept) > 0 {
		stale = stale.Where("id NOT IN ?", kept)
	}
	if err := stale.Delete(&DeliveryDTO{}).Error; err != nil {
		return err
	}

	if len(dto.Deliveries) > 0 {
		if err := db.Model(&DeliveryDTO{}).
			Where("route_id = ?", dto.ID).
			Update("sort_order", gorm.Expr("-sort_order")).Error; err != nil {
			return err
		}
		if err := db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&dto.Deliveries).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// UpdateLocation writes only the position columns.
func (r *GormRouteRepository) UpdateLocation(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&RouteDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"current_latitude":     dto.CurrentLatitude,
		"current_longitude":    dto.CurrentLongitude,
		"last_location_update": dto.LastLocationUpdate,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("route", aggregate.ID().String())
	}
	return nil
}

func (r *GormRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.load(ctx, true, id.String(), "id = ?", id.Bytes())
}

func (r *GormRouteRepository) GetByDriverToken(ctx context.Context, token kernel.Token) (*route.Route, error) {
	if token.IsEmpty() {
		return nil, kernel.ErrTokenIsEmpty
	}
	return r.load(ctx, true, token.Prefix(8), "driver_token = ?", token.String())
}

func (r *GormRouteRepository) Find(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.load(ctx, false, id.String(), "id = ?", id.Bytes())
}

func (r *GormRouteRepository) FindByDriverToken(ctx context.Context, token kernel.Token) (*route.Route, error) {
	if token.IsEmpty() {
		return nil, kernel.ErrTokenIsEmpty
	}
	return r.load(ctx, false, token.Prefix(8), "driver_token = ?", token.String())
}

// Delete removes the route's evidence, stops and row, in that order.
func (r *GormRouteRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	stops := db.Model(&DeliveryDTO{}).Select("id").Where("route_id = ?", id.Bytes())
	if err := db.Where("delivery_id IN (?)", stops).Delete(&EvidenceDTO{}).Error; err != nil {
		return err
	}
	if err := db.Where("route_id = ?", id.Bytes()).Delete(&DeliveryDTO{}).Error; err != nil {
		return err
	}

	result := db.Delete(&RouteDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("route", id.String())
	}
	return nil
}

// load reads the route row, FOR UPDATE when lock is set, then its stops and
// evidence. The stops are read by a separate statement, so only the route
// row is locked.
func (r *GormRouteRepository) load(ctx context.Context, lock bool, ref string, query string, args ...any) (*route.Route, error) {
	db := r.db.WithContext(ctx)

	rows := db
	if lock {
		rows = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto RouteDTO
	if err := rows.Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", ref)
		}
		return nil, err
	}

	if err := db.Preload("Evidence", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at") }).
		Where("route_id = ?", dto.ID).
		Order("sort_order").
		Find(&dto.Deliveries).Error; err != nil {
		return nil, err
	}

	return toDomain(dto)
}
