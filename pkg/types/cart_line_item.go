package types

import (
	"database/sql/driver"
	"encoding/json"
	"math"

	"github.com/google/uuid"
)

// CartLineItem is one product line embedded in a cart document.
type CartLineItem struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

// LineTotalCents returns quantity times the price snapshot.
func (c CartLineItem) LineTotalCents() int64 {
	return int64(c.Quantity) * c.UnitPriceCents
}

// CheckedLineTotalCents is LineTotalCents that reports false instead of
// wrapping when the product does not fit in int64. Negative inputs are never
// valid and also report false.
func (c CartLineItem) CheckedLineTotalCents() (int64, bool) {
	qty := int64(c.Quantity)
	if qty < 0 || c.UnitPriceCents < 0 {
		return 0, false
	}
	if qty != 0 && c.UnitPriceCents > math.MaxInt64/qty {
		return 0, false
	}
	return qty * c.UnitPriceCents, true
}

// CartLineItems is the ordered item list persisted as JSONB.
type CartLineItems []CartLineItem

// Value serializes the items to JSON; a nil slice is stored as [].
func (c CartLineItems) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return jsonValue([]CartLineItem(c))
}

// Scan decodes JSONB into the item slice.
func (c *CartLineItems) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded CartLineItems
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*c = decoded
	return nil
}

// IndexOf returns the position of the line for productID, or -1.
func (c CartLineItems) IndexOf(productID uuid.UUID) int {
	for i, item := range c {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
