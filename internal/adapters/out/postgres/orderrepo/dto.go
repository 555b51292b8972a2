// Package orderrepo persists order aggregates and their item lines with GORM.
package orderrepo

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Money columns are numeric(12,2).
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeliveryRouteID *uuid.UUID      `gorm:"type:uuid;index"`
	OrderType       order.Type      `gorm:"type:smallint;not null"`
	Status          order.Status    `gorm:"type:smallint;not null;index"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ShippingCost    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AccessToken     string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	CreatedAt       time.Time       `gorm:"not null"`
	ExpiresAt       time.Time       `gorm:"not null"`
	PostponedAt     *time.Time
	PostponedNote   string         `gorm:"type:text"`
	Items           []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one purchased line.
type OrderItemDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"type:int;not null"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Quantity  int             `gorm:"type:int;not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	orderID := o.ID().Bytes()
	items := make([]OrderItemDTO, 0, len(o.Items()))
	for i, item := range o.Items() {
		items = append(items, OrderItemDTO{
			ID:        item.ID().Bytes(),
			OrderID:   orderID,
			Position:  i + 1,
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().Amount(),
			LineTotal: item.LineTotal().Amount(),
		})
	}

	return OrderDTO{
		ID:              orderID,
		ClientID:        o.ClientID().Bytes(),
		DeliveryRouteID: kernel.UUIDPtrBytes(o.RouteID()),
		OrderType:       o.Type(),
		Status:          o.Status(),
		Subtotal:        o.Subtotal().Amount(),
		ShippingCost:    o.ShippingCost().Amount(),
		Total:           o.Total().Amount(),
		AccessToken:     o.AccessToken().String(),
		CreatedAt:       o.CreatedAt(),
		ExpiresAt:       o.ExpiresAt(),
		PostponedAt:     o.PostponedAt(),
		PostponedNote:   o.PostponedNote(),
		Items:           items,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	clientID, err := kernel.UUIDFromBytes(dto.ClientID[:])
	if err != nil {
		return nil, err
	}
	routeID, err := kernel.UUIDPtrFromBytes(dto.DeliveryRouteID)
	if err != nil {
		return nil, err
	}

	subtotal, err := kernel.NewMoney(dto.Subtotal)
	if err != nil {
		return nil, err
	}
	shipping, err := kernel.NewMoney(dto.ShippingCost)
	if err != nil {
		return nil, err
	}
	total, err := kernel.NewMoney(dto.Total)
	if err != nil {
		return nil, err
	}

	items := make([]*order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.Snapshot{
		ID:            id,
		ClientID:      clientID,
		RouteID:       routeID,
		Type:          dto.OrderType,
		Status:        dto.Status,
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		Total:         total,
		AccessToken:   kernel.Token(dto.AccessToken),
		CreatedAt:     dto.CreatedAt,
		ExpiresAt:     dto.ExpiresAt,
		PostponedAt:   dto.PostponedAt,
		PostponedNote: dto.PostponedNote,
		Items:         items,
	})
}

func itemToDomain(dto OrderItemDTO) (*order.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	unitPrice, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return nil, err
	}
	return order.NewItem(id, dto.Name, dto.Quantity, unitPrice)
}
