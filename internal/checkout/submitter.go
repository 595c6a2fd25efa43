package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chifaexpress/storefront-backend/internal/cart"
	"github.com/chifaexpress/storefront-backend/internal/orders"
	"github.com/chifaexpress/storefront-backend/internal/session"
	"github.com/chifaexpress/storefront-backend/pkg/db/models"
	"github.com/chifaexpress/storefront-backend/pkg/enums"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
	"github.com/chifaexpress/storefront-backend/pkg/logger"
	"github.com/chifaexpress/storefront-backend/pkg/metrics"
)

// Outcome is the terminal state of one submission attempt.
type Outcome string

const (
	// OutcomeSucceeded means the order and all its line items were written
	// and the cart was cleared.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeOrderFailed means the order record itself could not be
	// created. Nothing was written; the cart is untouched and the user can
	// retry the whole submission.
	OutcomeOrderFailed Outcome = "order_failed"
	// OutcomePartialFailure means the order exists but some or all of its
	// line items could not be written. The cart is preserved so the
	// contents are not lost; staff must reconcile the order.
	OutcomePartialFailure Outcome = "partial_failure"
)

// Result reports how a submission ended. Order is set for every outcome
// that produced an order record.
type Result struct {
	Outcome Outcome          `json:"outcome"`
	Order   *orders.OrderDTO `json:"order,omitempty"`
}

// SubmitInput carries optional overrides of the profile snapshot for one
// submission.
type SubmitInput struct {
	CustomerName    *string `json:"customer_name,omitempty"`
	CustomerPhone   *string `json:"customer_phone,omitempty"`
	DeliveryAddress *string `json:"delivery_address,omitempty"`
}

type orderWriter interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
}

type cartAccessor interface {
	View(ctx context.Context, profileID string) (*cart.View, error)
	Clear(ctx context.Context, profileID string) error
}

type submitLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type lockKeyer interface {
	CheckoutLockKey(profileID string) string
}

// Submitter runs the two-step order creation saga. Order and line items are
// written as two independent calls with no shared transaction; the cart is
// cleared only after both succeed.
type Submitter struct {
	carts   cartAccessor
	orders  orderWriter
	locker  submitLocker
	keyer   lockKeyer
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	lockTTL time.Duration
}

// SubmitterParams bundles the dependencies of the submitter.
type SubmitterParams struct {
	Carts   cartAccessor
	Orders  orderWriter
	Locker  submitLocker
	Keyer   lockKeyer
	Metrics *metrics.CheckoutMetrics
	Logger  *logger.Logger
	LockTTL time.Duration
}

// NewSubmitter builds the checkout submitter.
func NewSubmitter(params SubmitterParams) (*Submitter, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart accessor required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order writer required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("submit locker required")
	}
	if params.Keyer == nil {
		return nil, fmt.Errorf("lock keyer required")
	}
	if params.LockTTL <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive")
	}
	return &Submitter{
		carts:   params.Carts,
		orders:  params.Orders,
		locker:  params.Locker,
		keyer:   params.Keyer,
		metrics: params.Metrics,
		logg:    params.Logger,
		lockTTL: params.LockTTL,
	}, nil
}

// Submit runs one checkout attempt for the authenticated identity. A second
// call for the same profile while one is in flight is rejected without
// touching the order store. The returned Result is non-nil whenever a
// terminal state was reached; err carries the user-facing failure.
func (s *Submitter) Submit(ctx context.Context, identity *session.Identity, input SubmitInput) (*Result, error) {
	if identity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !identity.Capabilities.Has(enums.CapabilityPlaceOrders) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	profileID := identity.ProfileID()
	lockKey := s.keyer.CheckoutLockKey(profileID)

	acquired, err := s.locker.SetNX(ctx, lockKey, "1", s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire submit lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a submission is already in progress")
	}
	defer func() {
		if err := s.locker.Del(ctx, lockKey); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "releasing submit lock failed")
		}
	}()

	started := time.Now()
	result, err := s.run(ctx, identity, profileID, input)
	if result != nil {
		s.metrics.ObserveSubmission(string(result.Outcome), time.Since(started))
	}
	return result, err
}

func (s *Submitter) run(ctx context.Context, identity *session.Identity, profileID string, input SubmitInput) (*Result, error) {
	view, err := s.carts.View(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order, err := s.buildOrder(identity, view, input)
	if err != nil {
		return nil, err
	}

	ctx = s.withOrderLog(ctx, profileID)

	// Step 1: the order record. Failure here leaves no trace.
	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "order creation failed", err)
		}
		return &Result{Outcome: OutcomeOrderFailed},
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not register the order, please try again")
	}

	// Step 2: line items, attributed to the order id from step 1. There is
	// no transaction spanning both steps.
	items := lineItemsFor(created, view.Items)
	if err := s.orders.CreateLineItems(ctx, items); err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, created.ID.String()), "line item creation failed after order was registered", err)
		}
		return &Result{Outcome: OutcomePartialFailure, Order: orders.FromModel(created)},
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "the order was registered but its contents could not be saved")
	}
	created.Items = items

	// Step 3: only a fully written order clears the cart.
	if err := s.carts.Clear(ctx, profileID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, created.ID.String()), "cart clear after successful checkout failed")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, created.ID.String()), "checkout succeeded")
	}
	return &Result{Outcome: OutcomeSucceeded, Order: orders.FromModel(created)}, nil
}

func (s *Submitter) buildOrder(identity *session.Identity, view *cart.View, input SubmitInput) (*models.Order, error) {
	name := identity.Profile.FullName
	if input.CustomerName != nil && strings.TrimSpace(*input.CustomerName) != "" {
		name = strings.TrimSpace(*input.CustomerName)
	}
	phone := identity.Profile.Phone
	if input.CustomerPhone != nil {
		phone = strings.TrimSpace(*input.CustomerPhone)
	}
	address := identity.Profile.Address
	if input.DeliveryAddress != nil {
		address = strings.TrimSpace(*input.DeliveryAddress)
	}

	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}

	return &models.Order{
		UserID:          identity.UserID,
		CustomerName:    name,
		CustomerPhone:   phone,
		DeliveryAddress: address,
		Subtotal:        view.Totals.Subtotal,
		Shipping:        view.Totals.Shipping,
		Total:           view.Totals.Total,
		Currency:        view.Totals.Currency,
		Status:          enums.OrderStatusPending,
	}, nil
}

func (s *Submitter) withOrderLog(ctx context.Context, profileID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithUserID(ctx, profileID)
}

func lineItemsFor(order *models.Order, items []cart.Item) []models.OrderLineItem {
	out := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.OrderLineItem{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}
	return out
}
