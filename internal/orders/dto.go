package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
)

// PlaceOrderInput is the checkout payload.
type PlaceOrderInput struct {
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
}

// OrderLineDTO renders one order line.
type OrderLineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	SKU            string    `json:"sku"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	UnitPrice      string    `json:"unit_price"`
	LineTotalCents int64     `json:"line_total_cents"`
	LineTotal      string    `json:"line_total"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	OwnerID         uuid.UUID             `json:"owner_id"`
	Status          enums.OrderStatus     `json:"status"`
	Lines           []OrderLineDTO        `json:"lines"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	TotalPriceCents int64                 `json:"total_price_cents"`
	TotalPrice      string                `json:"total_price"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// OrderList is one page of the caller's orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func NewOrderDTO(o *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              o.ID,
		OwnerID:         o.OwnerID,
		Status:          o.Status,
		Lines:           make([]OrderLineDTO, 0, len(o.Lines)),
		ShippingAddress: o.ShippingAddress,
		TotalPriceCents: o.TotalPriceCents,
		TotalPrice:      money.Format(o.TotalPriceCents),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, line := range o.Lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ProductID:      line.ProductID,
			Title:          line.Title,
			SKU:            line.SKU,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			UnitPrice:      money.Format(line.UnitPriceCents),
			LineTotalCents: line.LineTotalCents,
			LineTotal:      money.Format(line.LineTotalCents),
		})
	}
	return dto
}
