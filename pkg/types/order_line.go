package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OrderLine is an immutable copy of a cart line taken at checkout.
type OrderLine struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	SKU            string    `json:"sku"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// OrderLines is persisted as JSONB on the order row.
type OrderLines []OrderLine

func (o OrderLines) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	return jsonValue([]OrderLine(o))
}

func (o *OrderLines) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded OrderLines
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*o = decoded
	return nil
}

// ShippingAddress is the delivery destination captured on an order.
type ShippingAddress struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// Validate checks the required parts without the request validator.
func (a ShippingAddress) Validate() error {
	switch {
	case strings.TrimSpace(a.Address) == "":
		return fmt.Errorf("shipping address: missing address")
	case strings.TrimSpace(a.City) == "":
		return fmt.Errorf("shipping address: missing city")
	case strings.TrimSpace(a.PostalCode) == "":
		return fmt.Errorf("shipping address: missing postal_code")
	case strings.TrimSpace(a.Country) == "":
		return fmt.Errorf("shipping address: missing country")
	}
	return nil
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return jsonValue(a)
}

func (a *ShippingAddress) Scan(value interface{}) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, a)
}
