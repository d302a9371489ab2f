package cart

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// ProductSummary is the display record a cart line resolves to.
type ProductSummary struct {
	ID           uuid.UUID `json:"id"`
	SKU          string    `json:"sku"`
	Title        string    `json:"title"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Category     string    `json:"category"`
	Brand        *string   `json:"brand,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	Price        string    `json:"price"`
	CountInStock int       `json:"count_in_stock"`
}

// LineView is a cart line as returned to clients.
type LineView struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	UnitPrice      string          `json:"unit_price"`
	LineTotalCents int64           `json:"line_total_cents"`
	LineTotal      string          `json:"line_total"`
	Product        *ProductSummary `json:"product"`
}

// CartView is the cart payload. Product is nil on lines whose product has
// been deleted, and on mutation responses where products are not resolved.
type CartView struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	Items           []LineView `json:"items"`
	TotalPriceCents int64      `json:"total_price_cents"`
	TotalPrice      string     `json:"total_price"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewCartView renders a cart, resolving lines against products when given.
func NewCartView(c *models.Cart, products map[uuid.UUID]models.Product) *CartView {
	view := &CartView{
		ID:              c.ID,
		OwnerID:         c.OwnerID,
		Items:           make([]LineView, 0, len(c.Items)),
		TotalPriceCents: c.TotalPriceCents,
		TotalPrice:      money.Format(c.TotalPriceCents),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	for _, item := range c.Items {
		line := LineView{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			UnitPrice:      money.Format(item.UnitPriceCents),
			LineTotalCents: item.LineTotalCents(),
			LineTotal:      money.Format(item.LineTotalCents()),
		}
		if p, ok := products[item.ProductID]; ok {
			line.Product = newProductSummary(&p)
		}
		view.Items = append(view.Items, line)
	}
	return view
}

func newProductSummary(p *models.Product) *ProductSummary {
	return &ProductSummary{
		ID:           p.ID,
		SKU:          p.SKU,
		Title:        p.Title,
		ImageURL:     p.ImageURL,
		Category:     p.Category,
		Brand:        p.Brand,
		PriceCents:   p.PriceCents,
		Price:        money.Format(p.PriceCents),
		CountInStock: p.CountInStock,
	}
}
