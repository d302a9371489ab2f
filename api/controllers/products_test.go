package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	productsvc "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubProductService struct {
	created   *productsvc.CreateProductInput
	updated   *productsvc.UpdateProductInput
	listInput *productsvc.ListProductsInput
	product   *productsvc.ProductDTO
	err       error
}

func (s *stubProductService) CreateProduct(ctx context.Context, userID uuid.UUID, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	s.created = &input
	return s.product, s.err
}

func (s *stubProductService) UpdateProduct(ctx context.Context, userID, productID uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	s.updated = &input
	return s.product, s.err
}

func (s *stubProductService) DeleteProduct(ctx context.Context, userID, productID uuid.UUID) error {
	return s.err
}

func (s *stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	return s.product, s.err
}

func (s *stubProductService) ListProducts(ctx context.Context, input productsvc.ListProductsInput) (*productsvc.ProductListResult, error) {
	s.listInput = &input
	return &productsvc.ProductListResult{Products: []productsvc.ProductDTO{}}, s.err
}

func withUser(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), uuid.NewString(), "customer"))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestProductCreateParsesDecimalPrice(t *testing.T) {
	svc := &stubProductService{product: &productsvc.ProductDTO{ID: uuid.New()}}
	body := `{"sku":"SKU-1","title":"Lamp","category":"home","price":"19.99","count_in_stock":3}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	ProductCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created == nil || svc.created.PriceCents != 1999 {
		t.Fatalf("expected 1999 cents, got %+v", svc.created)
	}
}

func TestProductCreatePriceErrors(t *testing.T) {
	cases := map[string]string{
		"missing":       `{"sku":"S","title":"T","category":"c"}`,
		"too precise":   `{"sku":"S","title":"T","category":"c","price":"1.999"}`,
		"disagreement":  `{"sku":"S","title":"T","category":"c","price":"1.00","price_cents":150}`,
		"unknown field": `{"sku":"S","title":"T","category":"c","price":"1.00","stock":1}`,
	}
	for name, body := range cases {
		svc := &stubProductService{}
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body)))
		rec := httptest.NewRecorder()
		ProductCreate(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, rec.Code)
		}
		if svc.created != nil {
			t.Fatalf("%s: service must not be called", name)
		}
	}
}

func TestProductCreateRequiresUser(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	ProductCreate(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestProductUpdatePartial(t *testing.T) {
	svc := &stubProductService{product: &productsvc.ProductDTO{ID: uuid.New()}}
	req := withUser(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"price_cents":500}`)))
	req = withURLParam(req, "productId", uuid.NewString())
	rec := httptest.NewRecorder()
	ProductUpdate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updated == nil || svc.updated.PriceCents == nil || *svc.updated.PriceCents != 500 {
		t.Fatalf("unexpected update %+v", svc.updated)
	}
	if svc.updated.Title != nil {
		t.Fatalf("title should be untouched")
	}
}

func TestProductUpdateForbidden(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeForbidden, "only the creator may modify this product")}
	req := withUser(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"title":"x"}`)))
	req = withURLParam(req, "productId", uuid.NewString())
	rec := httptest.NewRecorder()
	ProductUpdate(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestProductGetBadID(t *testing.T) {
	svc := &stubProductService{}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "productId", "nope")
	rec := httptest.NewRecorder()
	ProductGet(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestProductGetNotFound(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "productId", uuid.NewString())
	rec := httptest.NewRecorder()
	ProductGet(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&envelope)
	if envelope.Error.Message != "Product not found" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestProductListPassesFilters(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=5&category=home", nil)
	rec := httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.listInput == nil || svc.listInput.Pagination.Limit != 5 || svc.listInput.Category != "home" {
		t.Fatalf("unexpected list input %+v", svc.listInput)
	}
}

func TestProductDelete(t *testing.T) {
	svc := &stubProductService{}
	req := withUser(httptest.NewRequest(http.MethodDelete, "/", nil))
	req = withURLParam(req, "productId", uuid.NewString())
	rec := httptest.NewRecorder()
	ProductDelete(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
