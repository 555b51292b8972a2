// Package routerepo persists route aggregates, their stops and delivery
// evidence with GORM.
package routerepo

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"

	"github.com/google/uuid"
)

// RouteDTO is the row of a delivery route. The driver position is stored
// inline and updated without locking the row.
type RouteDTO struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Name               string       `gorm:"type:varchar(64);not null"`
	DriverToken        string       `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status             route.Status `gorm:"type:smallint;not null;index"`
	CreatedAt          time.Time    `gorm:"not null"`
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CurrentLatitude    *float64
	CurrentLongitude   *float64
	LastLocationUpdate *time.Time
	Deliveries         []DeliveryDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

func (RouteDTO) TableName() string {
	return "delivery_routes"
}

// DeliveryDTO is one stop of a route.
type DeliveryDTO struct {
	ID            uuid.UUID            `gorm:"type:uuid;primaryKey"`
	RouteID       uuid.UUID            `gorm:"type:uuid;not null;index;uniqueIndex:idx_deliveries_route_sort"`
	OrderID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	SortOrder     int                  `gorm:"type:int;not null;uniqueIndex:idx_deliveries_route_sort"`
	Status        route.DeliveryStatus `gorm:"type:smallint;not null"`
	Notes         string               `gorm:"type:text"`
	FailureReason string               `gorm:"type:text"`
	DeliveredAt   *time.Time
	Evidence      []EvidenceDTO `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`
}

func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// EvidenceDTO is one delivery photo. Evidence is append-only.
type EvidenceDTO struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey"`
	DeliveryID uuid.UUID          `gorm:"type:uuid;not null;index"`
	ImageURL   string             `gorm:"type:text;not null"`
	Type       route.EvidenceType `gorm:"type:smallint;not null"`
	CreatedAt  time.Time          `gorm:"not null"`
}

func (EvidenceDTO) TableName() string {
	return "delivery_evidences"
}

func fromDomain(r *route.Route) RouteDTO {
	routeID := r.ID().Bytes()
	deliveries := make([]DeliveryDTO, 0, len(r.Deliveries()))
	for _, d := range r.Deliveries() {
		deliveries = append(deliveries, deliveryFromDomain(routeID, d))
	}

	dto := RouteDTO{
		ID:                 routeID,
		Name:               r.Name(),
		DriverToken:        r.DriverToken().String(),
		Status:             r.Status(),
		CreatedAt:          r.CreatedAt(),
		StartedAt:          r.StartedAt(),
		CompletedAt:        r.CompletedAt(),
		LastLocationUpdate: r.LastLocationUpdate(),
		Deliveries:         deliveries,
	}
	if loc := r.Location(); loc != nil {
		lat, lng := loc.Latitude(), loc.Longitude()
		dto.CurrentLatitude = &lat
		dto.CurrentLongitude = &lng
	}
	return dto
}

func deliveryFromDomain(routeID uuid.UUID, d *route.Delivery) DeliveryDTO {
	deliveryID := d.ID().Bytes()
	evidence := make([]EvidenceDTO, 0, len(d.Evidence()))
	for _, e := range d.Evidence() {
		evidence = append(evidence, EvidenceDTO{
			ID:         e.ID().Bytes(),
			DeliveryID: deliveryID,
			ImageURL:   e.ImageURL(),
			Type:       e.Type(),
			CreatedAt:  e.CreatedAt(),
		})
	}

	return DeliveryDTO{
		ID:            deliveryID,
		RouteID:       routeID,
		OrderID:       d.OrderID().Bytes(),
		SortOrder:     d.SortOrder(),
		Status:        d.Status(),
		Notes:         d.Notes(),
		FailureReason: d.FailureReason(),
		DeliveredAt:   d.DeliveredAt(),
		Evidence:      evidence,
	}
}

func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.CurrentLatitude != nil && dto.CurrentLongitude != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.CurrentLatitude, *dto.CurrentLongitude)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &point
	}

	deliveries := make([]*route.Delivery, 0, len(dto.Deliveries))
	for _, deliveryDTO := range dto.Deliveries {
		d, deliveryErr := deliveryToDomain(deliveryDTO)
		if deliveryErr != nil {
			return nil, deliveryErr
		}
		deliveries = append(deliveries, d)
	}

	return route.RestoreRoute(route.Snapshot{
		ID:                 id,
		Name:               dto.Name,
		DriverToken:        kernel.Token(dto.DriverToken),
		Status:             dto.Status,
		CreatedAt:          dto.CreatedAt,
		StartedAt:          dto.StartedAt,
		CompletedAt:        dto.CompletedAt,
		Location:           location,
		LastLocationUpdate: dto.LastLocationUpdate,
		Deliveries:         deliveries,
	})
}

func deliveryToDomain(dto DeliveryDTO) (*route.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	routeID, err := kernel.UUIDFromBytes(dto.RouteID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	evidence := make([]*route.Evidence, 0, len(dto.Evidence))
	for _, e := range dto.Evidence {
		evidenceID, idErr := kernel.UUIDFromBytes(e.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		restored, evidenceErr := route.NewEvidence(evidenceID, id, e.ImageURL, e.Type, e.CreatedAt)
		if evidenceErr != nil {
			return nil, evidenceErr
		}
		evidence = append(evidence, restored)
	}

	return route.RestoreDelivery(id, routeID, orderID, dto.SortOrder, dto.Status,
		dto.Notes, dto.FailureReason, dto.DeliveredAt, evidence)
}
