package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order placement and buyer order reads.
type Service interface {
	PlaceOrder(ctx context.Context, ownerID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	ListMine(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OrderList, error)
	GetOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	carts    cart.CartRepository
	products *product.Repository
	tx       txRunner
}

// NewService builds an order service.
func NewService(repo Repository, carts cart.CartRepository, productRepo *product.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, carts: carts, products: productRepo, tx: tx}, nil
}

// PlaceOrder copies the owner's cart into a new order and empties the cart
// in the same transaction. Products are resolved on that transaction too.
func (s *service) PlaceOrder(ctx context.Context, ownerID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		c, err := carts.FindByOwner(ctx, ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, cart.ErrCartNotFound, "Cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(c.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		total, err := cart.RecomputeTotal(c)
		if err != nil {
			return err
		}
		lines, err := s.buildLines(ctx, s.products.WithTx(tx), c.Items)
		if err != nil {
			return err
		}

		order := &models.Order{
			OwnerID:         ownerID,
			Lines:           lines,
			ShippingAddress: input.ShippingAddress,
			TotalPriceCents: total,
			Status:          enums.OrderStatusPlaced,
		}
		created, err = s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		cart.Empty(c)
		if _, err := carts.Save(ctx, c); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "place order")
		}
		return nil, err
	}
	return NewOrderDTO(created), nil
}

func (s *service) buildLines(ctx context.Context, lookup *product.Repository, items types.CartLineItems) (types.OrderLines, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	found, err := lookup.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}

	lines := make(types.OrderLines, 0, len(items))
	var missing []uuid.UUID
	for _, item := range items {
		p, ok := found[item.ProductID]
		if !ok {
			missing = append(missing, item.ProductID)
			continue
		}
		lines = append(lines, types.OrderLine{
			ProductID:      item.ProductID,
			Title:          p.Title,
			SKU:            p.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents(),
		})
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains products that are no longer available").
			WithDetails(map[string]any{"product_ids": missing})
	}
	return lines, nil
}

func (s *service) ListMine(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByOwner(ctx, ownerID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	page := pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	list := &OrderList{Orders: make([]OrderDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for i := range page.Items {
		list.Orders = append(list.Orders, *NewOrderDTO(&page.Items[i]))
	}
	return list, nil
}

// GetOrder returns an order owned by ownerID. Orders of other users are
// reported as not found.
func (s *service) GetOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	return NewOrderDTO(order), nil
}
