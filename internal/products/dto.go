package product

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// ProductDTO is the product payload returned to clients.
type ProductDTO struct {
	ID           uuid.UUID `json:"id"`
	SKU          string    `json:"sku"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Category     string    `json:"category"`
	Brand        *string   `json:"brand,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	Price        string    `json:"price"`
	CountInStock int       `json:"count_in_stock"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:           product.ID,
		SKU:          product.SKU,
		Title:        product.Title,
		Description:  product.Description,
		ImageURL:     product.ImageURL,
		Category:     product.Category,
		Brand:        product.Brand,
		PriceCents:   product.PriceCents,
		Price:        money.Format(product.PriceCents),
		CountInStock: product.CountInStock,
		CreatedBy:    product.CreatedBy,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}
