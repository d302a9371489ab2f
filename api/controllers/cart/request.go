package cart

import (
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/google/uuid"
)

// itemRequest is the add and update payload. Range checks happen in the
// service so the error kinds stay the same for every caller.
type itemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (r itemRequest) toInput() cartsvc.ItemInput {
	return cartsvc.ItemInput{ProductID: r.ProductID, Quantity: r.Quantity}
}

type removeRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}
