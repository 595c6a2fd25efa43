package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chifaexpress/storefront-backend/internal/pricing"
	"github.com/chifaexpress/storefront-backend/pkg/db/models"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
)

const maxQuantityPerLine = 99

type productLoader interface {
	GetActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// View is the cart as presented to clients: the snapshot plus derived totals.
type View struct {
	Items  []Item         `json:"items"`
	Totals pricing.Totals `json:"totals"`
}

// Service exposes cart mutations and reads for a profile.
type Service interface {
	View(ctx context.Context, profileID string) (*View, error)
	AddItem(ctx context.Context, profileID string, productID uuid.UUID, quantity int) (*View, error)
	SetQuantity(ctx context.Context, profileID string, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, profileID string, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, profileID string) error
}

type service struct {
	store    *Store
	products productLoader
	engine   *pricing.Engine
}

// NewService builds a cart service backed by the snapshot store.
func NewService(store *Store, products productLoader, engine *pricing.Engine) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	return &service{store: store, products: products, engine: engine}, nil
}

func (s *service) View(ctx context.Context, profileID string) (*View, error) {
	if profileID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	snap, err := s.store.Load(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.render(snap), nil
}

// AddItem puts quantity units of the product into the cart, merging with an
// existing line for the same product. Name and price are captured from the
// catalog at this moment.
func (s *service) AddItem(ctx context.Context, profileID string, productID uuid.UUID, quantity int) (*View, error) {
	if err := validateMutation(profileID, productID); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.GetActive(ctx, productID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	snap, err := s.store.Load(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if idx := snap.find(productID); idx >= 0 {
		total := snap.Items[idx].Quantity + quantity
		if err := validateQuantityLimit(total); err != nil {
			return nil, err
		}
		snap.Items[idx].Quantity = total
	} else {
		if err := validateQuantityLimit(quantity); err != nil {
			return nil, err
		}
		snap.Items = append(snap.Items, Item{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  quantity,
			ImageURL:  product.ImageURL,
		})
	}

	if err := s.store.Save(ctx, profileID, snap); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return s.render(snap), nil
}

// SetQuantity replaces a line's quantity. Zero removes the line.
func (s *service) SetQuantity(ctx context.Context, profileID string, productID uuid.UUID, quantity int) (*View, error) {
	if err := validateMutation(profileID, productID); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	snap, err := s.store.Load(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	idx := snap.find(productID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	if quantity == 0 {
		snap.Items = append(snap.Items[:idx], snap.Items[idx+1:]...)
	} else {
		if err := validateQuantityLimit(quantity); err != nil {
			return nil, err
		}
		snap.Items[idx].Quantity = quantity
	}

	if err := s.store.Save(ctx, profileID, snap); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return s.render(snap), nil
}

func (s *service) RemoveItem(ctx context.Context, profileID string, productID uuid.UUID) (*View, error) {
	return s.SetQuantity(ctx, profileID, productID, 0)
}

func (s *service) Clear(ctx context.Context, profileID string) error {
	if profileID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if err := s.store.Clear(ctx, profileID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) render(snap Snapshot) *View {
	lines := make([]pricing.Line, 0, len(snap.Items))
	for _, item := range snap.Items {
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	items := snap.Items
	if items == nil {
		items = []Item{}
	}
	return &View{
		Items:  items,
		Totals: s.engine.ComputeTotals(lines),
	}
}

func validateMutation(profileID string, productID uuid.UUID) error {
	if profileID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return nil
}

func validateQuantityLimit(q int) error {
	if q > maxQuantityPerLine {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity cannot exceed %d units per item", maxQuantityPerLine))
	}
	return nil
}
