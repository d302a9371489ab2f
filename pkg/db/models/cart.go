package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the single cart document owned by a user. Items and
// TotalPriceCents live on the same row and are always written together.
type Cart struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID         uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Items           types.CartLineItems `gorm:"column:items;type:jsonb;not null"`
	TotalPriceCents int64               `gorm:"column:total_price_cents;not null;default:0"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
