package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

const maxCategoryFilterLen = 100

// ProductList returns one page of products, optionally filtered by category.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListProducts(r.Context(), productsvc.ListProductsInput{
			Pagination: params,
			Category:   validators.QueryString(r, "category", maxCategoryFilterLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductCreate lists a new product owned by the caller.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductUpdate applies a partial update. Only the creator may update.
func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), userID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), userID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// Price may be sent as a decimal string ("19.99") or as integer cents. When
// both are present they must agree.
type createProductRequest struct {
	SKU          string  `json:"sku" validate:"required,max=64"`
	Title        string  `json:"title" validate:"required,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=4000"`
	ImageURL     *string `json:"image_url" validate:"omitempty,url"`
	Category     string  `json:"category" validate:"required,max=100"`
	Brand        *string `json:"brand" validate:"omitempty,max=100"`
	Price        *string `json:"price"`
	PriceCents   *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	CountInStock int     `json:"count_in_stock" validate:"gte=0"`
}

func (p createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	cents, err := resolvePriceCents(p.Price, p.PriceCents)
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}
	if cents == nil {
		return productsvc.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price is required").
			WithDetails(map[string]string{"price": "is required"})
	}
	return productsvc.CreateProductInput{
		SKU:          p.SKU,
		Title:        p.Title,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		Category:     p.Category,
		Brand:        p.Brand,
		PriceCents:   *cents,
		CountInStock: p.CountInStock,
	}, nil
}

type updateProductRequest struct {
	SKU          *string `json:"sku" validate:"omitempty,max=64"`
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=4000"`
	ImageURL     *string `json:"image_url" validate:"omitempty,url"`
	Category     *string `json:"category" validate:"omitempty,max=100"`
	Brand        *string `json:"brand" validate:"omitempty,max=100"`
	Price        *string `json:"price"`
	PriceCents   *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	CountInStock *int    `json:"count_in_stock" validate:"omitempty,gte=0"`
}

func (p updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	cents, err := resolvePriceCents(p.Price, p.PriceCents)
	if err != nil {
		return productsvc.UpdateProductInput{}, err
	}
	return productsvc.UpdateProductInput{
		SKU:          p.SKU,
		Title:        p.Title,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		Category:     p.Category,
		Brand:        p.Brand,
		PriceCents:   cents,
		CountInStock: p.CountInStock,
	}, nil
}

func resolvePriceCents(price *string, priceCents *int64) (*int64, error) {
	if price == nil {
		return priceCents, nil
	}
	cents, err := money.ParseCents(*price)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price").
			WithDetails(map[string]string{"price": err.Error()})
	}
	if priceCents != nil && *priceCents != cents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price and price_cents disagree").
			WithDetails(map[string]string{"price": "does not match price_cents"})
	}
	return &cents, nil
}
