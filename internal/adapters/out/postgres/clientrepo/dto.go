// Package clientrepo persists client aggregates with GORM.
package clientrepo

import (
	"lastmile/internal/core/domain/model/client"
	"lastmile/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// ClientDTO is the row of a client together with its loyalty balances.
type ClientDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Phone          string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	Address        string    `gorm:"type:text"`
	Category       string    `gorm:"type:varchar(64);not null"`
	CurrentPoints  int       `gorm:"type:int;not null;default:0"`
	LifetimePoints int       `gorm:"type:int;not null;default:0"`
}

func (ClientDTO) TableName() string {
	return "clients"
}

func fromDomain(c *client.Client) ClientDTO {
	return ClientDTO{
		ID:             c.ID().Bytes(),
		Name:           c.Name(),
		Phone:          c.Phone(),
		Address:        c.Address(),
		Category:       c.Category(),
		CurrentPoints:  c.CurrentPoints(),
		LifetimePoints: c.LifetimePoints(),
	}
}

func toDomain(dto ClientDTO) (*client.Client, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return client.RestoreClient(id, dto.Name, dto.Phone, dto.Address, dto.Category, dto.CurrentPoints, dto.LifetimePoints)
}
