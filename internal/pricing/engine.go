package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chifaexpress/storefront-backend/pkg/config"
)

// Line is one priced cart position: a unit price and how many units.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals is the derived money breakdown for a cart. All amounts are
// rounded to two decimal places.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// Engine derives totals from cart lines. Shipping is a flat fee waived for
// empty carts and for subtotals at or above the free-shipping threshold.
type Engine struct {
	shippingFee   decimal.Decimal
	freeThreshold decimal.Decimal
	currency      string
}

// NewEngine builds a pricing engine from the configured business rules.
func NewEngine(cfg config.PricingConfig) (*Engine, error) {
	if cfg.ShippingFee.IsNegative() {
		return nil, fmt.Errorf("shipping fee cannot be negative")
	}
	if cfg.FreeShippingThreshold.IsNegative() {
		return nil, fmt.Errorf("free shipping threshold cannot be negative")
	}
	if cfg.Currency == "" {
		return nil, fmt.Errorf("currency is required")
	}
	return &Engine{
		shippingFee:   cfg.ShippingFee,
		freeThreshold: cfg.FreeShippingThreshold,
		currency:      cfg.Currency,
	}, nil
}

// ComputeTotals derives subtotal, shipping, and total for the given lines.
// Lines with non-positive quantity contribute nothing.
func (e *Engine) ComputeTotals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := e.ShippingFor(subtotal)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping).Round(2),
		Currency: e.currency,
	}
}

// ShippingFor returns the shipping charge for a given subtotal. Empty carts
// ship for free, as do subtotals at or above the threshold.
func (e *Engine) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero.Round(2)
	}
	if subtotal.GreaterThanOrEqual(e.freeThreshold) {
		return decimal.Zero.Round(2)
	}
	return e.shippingFee.Round(2)
}

// Currency reports the configured display currency.
func (e *Engine) Currency() string {
	return e.currency
}
