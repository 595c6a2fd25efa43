package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chifaexpress/storefront-backend/internal/catalog"
	"github.com/chifaexpress/storefront-backend/pkg/db/models"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
)

type stubCatalogService struct {
	products []models.Product
	product  *models.Product
	err      error

	lastCreate catalog.CreateProductInput
	lastActive *bool
}

func (s *stubCatalogService) ListActive(_ context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogService) GetActive(_ context.Context, _ uuid.UUID) (*models.Product, error) {
	if s.product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.product, s.err
}

func (s *stubCatalogService) ListAll(_ context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogService) Get(_ context.Context, _ uuid.UUID) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubCatalogService) Create(_ context.Context, input catalog.CreateProductInput) (*models.Product, error) {
	s.lastCreate = input
	return s.product, s.err
}

func (s *stubCatalogService) Update(_ context.Context, _ uuid.UUID, _ catalog.UpdateProductInput) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubCatalogService) SetActive(_ context.Context, _ uuid.UUID, active bool) (*models.Product, error) {
	s.lastActive = &active
	return s.product, s.err
}

func productFixture() *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     "Arroz Chaufa",
		Price:    decimal.RequireFromString("18.50"),
		IsActive: true,
	}
}

func TestCatalogListReturnsProducts(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{products: []models.Product{*productFixture()}}
	handler := CatalogList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/public/catalog", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []catalog.ProductDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "Arroz Chaufa", envelope.Data[0].Name)
}

func TestCatalogDetailHidesInactiveProducts(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/catalog/{productId}", CatalogDetail(&stubCatalogService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/catalog/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogDetailRejectsMalformedID(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/catalog/{productId}", CatalogDetail(&stubCatalogService{product: productFixture()}, nil))

	req := httptest.NewRequest(http.MethodGet, "/catalog/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminProductCreate(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{product: productFixture()}
	handler := AdminProductCreate(svc, nil)

	body := []byte(`{"name":"Arroz Chaufa","price":"18.50"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Arroz Chaufa", svc.lastCreate.Name)
	require.True(t, svc.lastCreate.Price.Equal(decimal.RequireFromString("18.50")))
}

func TestAdminProductCreateRequiresName(t *testing.T) {
	t.Parallel()

	handler := AdminProductCreate(&stubCatalogService{product: productFixture()}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", bytes.NewReader([]byte(`{"price":"18.50"}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminProductSetActive(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{product: productFixture()}
	r := chi.NewRouter()
	r.Post("/products/{productId}/active", AdminProductSetActive(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/products/"+uuid.NewString()+"/active", bytes.NewReader([]byte(`{"active":false}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastActive)
	require.False(t, *svc.lastActive)
}
