package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
}

// CreateProductInput captures a new listing.
type CreateProductInput struct {
	SKU          string
	Title        string
	Description  *string
	ImageURL     *string
	Category     string
	Brand        *string
	PriceCents   int64
	CountInStock int
}

// UpdateProductInput applies only the non-nil fields.
type UpdateProductInput struct {
	SKU          *string
	Title        *string
	Description  *string
	ImageURL     *string
	Category     *string
	Brand        *string
	PriceCents   *int64
	CountInStock *int
}

// ListProductsInput carries pagination and filters.
type ListProductsInput struct {
	Pagination pagination.Params
	Category   string
}

type productRepository interface {
	WithTx(tx *gorm.DB) *Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit int, cursor *pagination.Cursor, category string) ([]models.Product, error)
}

type service struct {
	repo     productRepository
	dbClient *db.Client
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateProduct(ctx context.Context, userID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if err := validateFields(input.SKU, input.Title, input.Category, input.PriceCents, input.CountInStock); err != nil {
		return nil, err
	}

	product := &models.Product{
		CreatedBy:    userID,
		SKU:          strings.TrimSpace(input.SKU),
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		Category:     strings.TrimSpace(input.Category),
		Brand:        input.Brand,
		PriceCents:   input.PriceCents,
		CountInStock: input.CountInStock,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, mapWriteError(err, "insert product")
	}
	return NewProductDTO(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := s.loadOwned(ctx, txRepo, userID, productID)
		if err != nil {
			return err
		}

		applyUpdateToProduct(product, input)
		if err := validateFields(product.SKU, product.Title, product.Category, product.PriceCents, product.CountInStock); err != nil {
			return err
		}

		updated, err = txRepo.Update(ctx, product)
		if err != nil {
			return mapWriteError(err, "update product")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes the listing. Carts keep their lines and render
// them with no product.
func (s *service) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, s.repo, userID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, input.Pagination.Limit, cursor, strings.TrimSpace(input.Category))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	page := pagination.Trim(rows, input.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	result := &ProductListResult{
		Products:   make([]ProductDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		result.Products = append(result.Products, *NewProductDTO(&page.Items[i]))
	}
	return result, nil
}

func (s *service) loadOwned(ctx context.Context, repo productRepository, userID, productID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	if product.CreatedBy != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may modify this product")
	}
	return product, nil
}

func validateFields(sku, title, category string, priceCents int64, countInStock int) error {
	switch {
	case strings.TrimSpace(sku) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	case strings.TrimSpace(title) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	case strings.TrimSpace(category) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	case priceCents < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	case countInStock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "count_in_stock must not be negative")
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.CountInStock != nil {
		product.CountInStock = *input.CountInStock
	}
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
}

func mapWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
