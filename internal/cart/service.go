package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service exposes the cart aggregate.
type Service interface {
	GetCart(ctx context.Context, ownerID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, ownerID uuid.UUID, input ItemInput) (*models.Cart, error)
	UpdateItem(ctx context.Context, ownerID uuid.UUID, input ItemInput) (*models.Cart, error)
	RemoveItem(ctx context.Context, ownerID, productID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLookup
	metrics  *metrics.CartMetrics
}

// NewService builds a cart service. m may be nil.
func NewService(repo CartRepository, tx txRunner, products productLookup, m *metrics.CartMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &service{repo: repo, tx: tx, products: products, metrics: m}, nil
}

func (s *service) GetCart(ctx context.Context, ownerID uuid.UUID) (*CartView, error) {
	if ownerID == uuid.Nil {
		return nil, invalidArgument("owner id is required")
	}
	c, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapLoadError(err)
	}

	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}
	return NewCartView(c, products), nil
}

// AddItem merges quantity into the owner's cart, creating the cart on the
// first add. The product is resolved before anything is written.
func (s *service) AddItem(ctx context.Context, ownerID uuid.UUID, input ItemInput) (*models.Cart, error) {
	if err := validateOwnerAndInput(ownerID, input); err != nil {
		s.metrics.Failed(metrics.CartOpAdd, failureReason(err))
		return nil, err
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = productNotFound()
		} else {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		s.metrics.Failed(metrics.CartOpAdd, failureReason(err))
		return nil, err
	}

	return s.mutate(ctx, metrics.CartOpAdd, ownerID, true, func(c *models.Cart) error {
		return MergeItem(c, product.ID, input.Quantity, product.PriceCents)
	})
}

// UpdateItem sets the quantity of an existing line.
func (s *service) UpdateItem(ctx context.Context, ownerID uuid.UUID, input ItemInput) (*models.Cart, error) {
	if err := validateOwnerAndInput(ownerID, input); err != nil {
		s.metrics.Failed(metrics.CartOpUpdate, failureReason(err))
		return nil, err
	}
	return s.mutate(ctx, metrics.CartOpUpdate, ownerID, false, func(c *models.Cart) error {
		if !SetQuantity(c, input.ProductID, input.Quantity) {
			return itemNotFound()
		}
		return nil
	})
}

// RemoveItem drops the line for productID; removing an absent line still
// succeeds and leaves the cart unchanged.
func (s *service) RemoveItem(ctx context.Context, ownerID, productID uuid.UUID) (*models.Cart, error) {
	if ownerID == uuid.Nil || productID == uuid.Nil {
		err := invalidArgument("product_id is required")
		s.metrics.Failed(metrics.CartOpRemove, failureReason(err))
		return nil, err
	}
	return s.mutate(ctx, metrics.CartOpRemove, ownerID, false, func(c *models.Cart) error {
		RemoveLine(c, productID)
		return nil
	})
}

func (s *service) Clear(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	if ownerID == uuid.Nil {
		err := invalidArgument("owner id is required")
		s.metrics.Failed(metrics.CartOpClear, failureReason(err))
		return nil, err
	}
	return s.mutate(ctx, metrics.CartOpClear, ownerID, false, func(c *models.Cart) error {
		Empty(c)
		return nil
	})
}

// mutate runs the read-modify-write cycle in one transaction: load the
// whole cart, apply, recompute the total, save the whole cart.
func (s *service) mutate(ctx context.Context, op string, ownerID uuid.UUID, create bool, apply func(c *models.Cart) error) (*models.Cart, error) {
	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		c, err := repo.FindByOwner(ctx, ownerID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound) && create:
			c = &models.Cart{OwnerID: ownerID, Items: types.CartLineItems{}}
		case err != nil:
			return mapLoadError(err)
		}

		if err := apply(c); err != nil {
			return err
		}
		if _, err := RecomputeTotal(c); err != nil {
			return err
		}

		saved, err = repo.Save(ctx, c)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart was modified concurrently, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist cart")
		}
		s.metrics.Failed(op, failureReason(err))
		return nil, err
	}
	s.metrics.Succeeded(op, len(saved.Items))
	return saved, nil
}

func validateOwnerAndInput(ownerID uuid.UUID, input ItemInput) error {
	if ownerID == uuid.Nil {
		return invalidArgument("owner id is required")
	}
	return input.Validate()
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cartNotFound()
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
}

func failureReason(err error) string {
	return string(pkgerrors.As(err).Code())
}
