package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a placed order. Lines are copied from the cart at checkout.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID         uuid.UUID             `gorm:"column:owner_id;type:uuid;not null;index"`
	Lines           types.OrderLines      `gorm:"column:lines;type:jsonb;not null"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;not null"`
	TotalPriceCents int64                 `gorm:"column:total_price_cents;not null"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = enums.OrderStatusPlaced
	}
	return nil
}
