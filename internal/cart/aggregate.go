package cart

import (
	"errors"
	"math"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
)

// LineItem is one product line inside a cart document.
type LineItem = types.CartLineItem

// Error kinds surfaced by the cart. The typed errors returned by the service
// wrap these, so callers can match them with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// ItemInput identifies a product line and the quantity to apply to it.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// Validate rejects a missing product id or a non-positive quantity.
func (in ItemInput) Validate() error {
	if in.ProductID == uuid.Nil {
		return invalidArgument("product_id is required")
	}
	if in.Quantity <= 0 {
		return invalidArgument("quantity must be a positive integer")
	}
	return nil
}

// RecomputeTotal sets TotalPriceCents to the sum of quantity times unit
// price over every line and returns it. It must run before every save. A line
// total or sum that does not fit in int64 is rejected and the cart total is
// left as it was.
func RecomputeTotal(c *models.Cart) (int64, error) {
	var total int64
	for _, item := range c.Items {
		line, ok := item.CheckedLineTotalCents()
		if !ok || total > math.MaxInt64-line {
			return 0, invalidArgument("cart total exceeds the supported range")
		}
		total += line
	}
	c.TotalPriceCents = total
	return total, nil
}

// MergeItem adds quantity to the existing line for productID, or appends a
// new line carrying the unit price snapshot. The cart is unchanged when the
// merged quantity would overflow.
func MergeItem(c *models.Cart, productID uuid.UUID, quantity int, unitPriceCents int64) error {
	if idx := c.Items.IndexOf(productID); idx >= 0 {
		if c.Items[idx].Quantity > math.MaxInt-quantity {
			return invalidArgument("quantity exceeds the supported range")
		}
		c.Items[idx].Quantity += quantity
		return nil
	}
	c.Items = append(c.Items, LineItem{
		ProductID:      productID,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
	})
	return nil
}

// SetQuantity replaces the quantity of the line for productID. It reports
// false when the cart has no such line.
func SetQuantity(c *models.Cart, productID uuid.UUID, quantity int) bool {
	idx := c.Items.IndexOf(productID)
	if idx < 0 {
		return false
	}
	c.Items[idx].Quantity = quantity
	return true
}

// RemoveLine filters out the line for productID. Absent lines are ignored.
func RemoveLine(c *models.Cart, productID uuid.UUID) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

// Empty drops every line and zeroes the total.
func Empty(c *models.Cart) {
	c.Items = types.CartLineItems{}
	c.TotalPriceCents = 0
}

func invalidArgument(msg string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidArgument, msg)
}

func productNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrProductNotFound, "Product not found")
}

func cartNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrCartNotFound, "Cart not found")
}

func itemNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrItemNotFound, "Item not found in cart")
}
