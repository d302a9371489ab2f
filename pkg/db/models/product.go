package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a catalog listing. CountInStock is informational only.
type Product struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CreatedBy    uuid.UUID `gorm:"column:created_by;type:uuid;not null;index"`
	SKU          string    `gorm:"column:sku;not null;uniqueIndex"`
	Title        string    `gorm:"column:title;not null"`
	Description  *string   `gorm:"column:description"`
	ImageURL     *string   `gorm:"column:image_url"`
	Category     string    `gorm:"column:category;not null"`
	Brand        *string   `gorm:"column:brand"`
	PriceCents   int64     `gorm:"column:price_cents;not null"`
	CountInStock int       `gorm:"column:count_in_stock;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
