package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chifaexpress/storefront-backend/internal/pricing"
	"github.com/chifaexpress/storefront-backend/pkg/config"
	"github.com/chifaexpress/storefront-backend/pkg/db/models"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
)

type fakeKV struct {
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}}
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeKV) CartKey(profileID string) string {
	return "test:cart:" + profileID
}

type fakeProducts struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeProducts) GetActive(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

func newTestService(t *testing.T) (Service, *fakeKV, uuid.UUID) {
	t.Helper()

	kv := newFakeKV()
	store, err := NewStore(kv, kv, nil)
	require.NoError(t, err)

	productID := uuid.New()
	products := &fakeProducts{products: map[uuid.UUID]*models.Product{
		productID: {
			ID:    productID,
			Name:  "Arroz Chaufa",
			Price: decimal.RequireFromString("12.50"),
		},
	}}

	engine, err := pricing.NewEngine(config.PricingConfig{
		ShippingFee:           decimal.RequireFromString("5.00"),
		FreeShippingThreshold: decimal.RequireFromString("50.00"),
		Currency:              "PEN",
	})
	require.NoError(t, err)

	svc, err := NewService(store, products, engine)
	require.NoError(t, err)
	return svc, kv, productID
}

func TestAddItemSnapshotsProductAndComputesTotals(t *testing.T) {
	t.Parallel()

	svc, _, productID := newTestService(t)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "profile-1", productID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, "Arroz Chaufa", view.Items[0].Name)
	require.Equal(t, 2, view.Items[0].Quantity)
	require.True(t, view.Totals.Subtotal.Equal(decimal.RequireFromString("25.00")))
	require.True(t, view.Totals.Shipping.Equal(decimal.RequireFromString("5.00")))
	require.True(t, view.Totals.Total.Equal(decimal.RequireFromString("30.00")))
}

func TestAddItemMergesExistingLine(t *testing.T) {
	t.Parallel()

	svc, _, productID := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "profile-1", productID, 1)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "profile-1", productID, 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	require.Equal(t, 4, view.Items[0].Quantity)
}

func TestAddItemRejectsUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), "profile-1", uuid.New(), 1)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	svc, _, productID := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "profile-1", productID, 2)
	require.NoError(t, err)

	view, err := svc.SetQuantity(ctx, "profile-1", productID, 0)
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.True(t, view.Totals.Total.IsZero())
}

func TestSetQuantityUnknownLineIsNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.SetQuantity(context.Background(), "profile-1", uuid.New(), 1)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAddItemAccumulationOverLimitIsRejected(t *testing.T) {
	t.Parallel()

	svc, _, productID := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "profile-1", productID, 60)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "profile-1", productID, 60)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	// the rejected add changed nothing
	view, err := svc.View(ctx, "profile-1")
	require.NoError(t, err)
	require.Equal(t, 60, view.Items[0].Quantity)
}

func TestSetQuantityOverLimitIsRejected(t *testing.T) {
	t.Parallel()

	svc, _, productID := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "profile-1", productID, 2)
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, "profile-1", productID, maxQuantityPerLine+1)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	view, err := svc.View(ctx, "profile-1")
	require.NoError(t, err)
	require.Equal(t, 2, view.Items[0].Quantity)
}

func TestCorruptSnapshotRecoversAsEmptyCart(t *testing.T) {
	t.Parallel()

	svc, kv, _ := newTestService(t)
	ctx := context.Background()

	kv.values["test:cart:profile-1"] = "{not json at all"

	view, err := svc.View(ctx, "profile-1")
	require.NoError(t, err)
	require.Empty(t, view.Items)

	_, ok := kv.values["test:cart:profile-1"]
	require.False(t, ok, "corrupt payload should be discarded")
}

func TestCorruptSnapshotWithBadItemRecovers(t *testing.T) {
	t.Parallel()

	svc, kv, _ := newTestService(t)
	ctx := context.Background()

	kv.values["test:cart:profile-1"] = `{"items":[{"product_id":"00000000-0000-0000-0000-000000000000","name":"x","unit_price":"1.00","quantity":-2}]}`

	view, err := svc.View(ctx, "profile-1")
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	svc, _, productID := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "profile-1", productID, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "profile-1"))

	view, err := svc.View(ctx, "profile-1")
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestCartsAreIsolatedPerProfile(t *testing.T) {
	t.Parallel()

	svc, _, productID := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "profile-1", productID, 2)
	require.NoError(t, err)

	view, err := svc.View(ctx, "profile-2")
	require.NoError(t, err)
	require.Empty(t, view.Items)
}
