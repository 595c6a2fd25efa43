package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chifaexpress/storefront-backend/api/middleware"
	cartsvc "github.com/chifaexpress/storefront-backend/internal/cart"
	"github.com/chifaexpress/storefront-backend/internal/pricing"
	"github.com/chifaexpress/storefront-backend/internal/session"
	"github.com/chifaexpress/storefront-backend/pkg/enums"
)

type stubCartService struct {
	view *cartsvc.View
	err  error

	lastProfileID string
	lastProductID uuid.UUID
	lastQuantity  int
	cleared       bool
}

func (s *stubCartService) View(_ context.Context, profileID string) (*cartsvc.View, error) {
	s.lastProfileID = profileID
	return s.view, s.err
}

func (s *stubCartService) AddItem(_ context.Context, profileID string, productID uuid.UUID, quantity int) (*cartsvc.View, error) {
	s.lastProfileID = profileID
	s.lastProductID = productID
	s.lastQuantity = quantity
	return s.view, s.err
}

func (s *stubCartService) SetQuantity(_ context.Context, profileID string, productID uuid.UUID, quantity int) (*cartsvc.View, error) {
	s.lastProfileID = profileID
	s.lastProductID = productID
	s.lastQuantity = quantity
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, profileID string, productID uuid.UUID) (*cartsvc.View, error) {
	s.lastProfileID = profileID
	s.lastProductID = productID
	return s.view, s.err
}

func (s *stubCartService) Clear(_ context.Context, profileID string) error {
	s.lastProfileID = profileID
	s.cleared = true
	return s.err
}

func cartViewFixture() *cartsvc.View {
	return &cartsvc.View{
		Items: []cartsvc.Item{
			{ProductID: uuid.New(), Name: "Arroz Chaufa", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		},
		Totals: pricing.Totals{
			Subtotal: decimal.RequireFromString("20.00"),
			Shipping: decimal.RequireFromString("5.00"),
			Total:    decimal.RequireFromString("25.00"),
			Currency: "PEN",
		},
	}
}

func withIdentity(req *http.Request) (*http.Request, *session.Identity) {
	identity := &session.Identity{
		UserID:       uuid.New(),
		AccessID:     uuid.NewString(),
		Role:         enums.UserRoleCustomer,
		Capabilities: enums.CapabilitiesForRole(enums.UserRoleCustomer),
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity)), identity
}

func TestCartViewRequiresIdentity(t *testing.T) {
	t.Parallel()

	handler := CartView(&stubCartService{view: cartViewFixture()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartViewReturnsTotals(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{view: cartViewFixture()}
	handler := CartView(svc, nil)

	req, identity := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, identity.ProfileID(), svc.lastProfileID)

	var envelope struct {
		Data cartsvc.View `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.Len(t, envelope.Data.Items, 1)
	require.True(t, envelope.Data.Totals.Total.Equal(decimal.RequireFromString("25.00")))
}

func TestCartAddItemPassesPayload(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{view: cartViewFixture()}
	handler := CartAddItem(svc, nil)

	productID := uuid.New()
	body, err := json.Marshal(map[string]any{"product_id": productID, "quantity": 3})
	require.NoError(t, err)

	req, _ := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, productID, svc.lastProductID)
	require.Equal(t, 3, svc.lastQuantity)
}

func TestCartAddItemOmittedQuantityDefaultsToOne(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{view: cartViewFixture()}
	handler := CartAddItem(svc, nil)

	body := []byte(`{"product_id":"` + uuid.NewString() + `"}`)
	req, _ := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, svc.lastQuantity)
}

func TestCartAddItemRejectsZeroQuantity(t *testing.T) {
	t.Parallel()

	handler := CartAddItem(&stubCartService{view: cartViewFixture()}, nil)

	body := []byte(`{"product_id":"` + uuid.NewString() + `","quantity":0}`)
	req, _ := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartClear(t *testing.T) {
	t.Parallel()

	svc := &stubCartService{view: cartViewFixture()}
	handler := CartClear(svc, nil)

	req, _ := withIdentity(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, svc.cleared)
}
