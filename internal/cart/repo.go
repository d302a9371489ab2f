package cart

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository is the persistence surface the cart service needs.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) (*models.Cart, error)
}

// Repository stores one cart row per owner with its items inline.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByOwner loads the owner's cart or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save writes the whole cart document, inserting it on first save.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	tx := r.db.WithContext(ctx)
	var err error
	if cart.ID == uuid.Nil {
		err = tx.Create(cart).Error
	} else {
		err = tx.Save(cart).Error
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}
