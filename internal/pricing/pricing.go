// Package pricing computes order totals. All arithmetic is done with
// exact decimals; amounts are rounded to cents only where a derived
// value (tax) can produce sub-cent fractions.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config holds the pricing constants. Ontario HST and a flat shipping
// fee waived above the free shipping threshold.
type Config struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultConfig returns the store's standard pricing
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.RequireFromString("15.99"),
		TaxRate:               decimal.RequireFromString("0.13"),
	}
}

// ParseConfig builds a Config from decimal strings, as found in
// configuration files and environment variables.
func ParseConfig(threshold, fee, taxRate string) (Config, error) {
	t, err := decimal.NewFromString(threshold)
	if err != nil {
		return Config{}, fmt.Errorf("invalid free shipping threshold %q: %w", threshold, err)
	}
	f, err := decimal.NewFromString(fee)
	if err != nil {
		return Config{}, fmt.Errorf("invalid shipping fee %q: %w", fee, err)
	}
	r, err := decimal.NewFromString(taxRate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
	}
	return Config{FreeShippingThreshold: t, ShippingFee: f, TaxRate: r}, nil
}

// Item is a priced cart line
type Item struct {
	Price    decimal.Decimal
	Quantity int
}

// Quote is the full totals breakdown for a set of items
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Subtotal sums price times quantity over all items
func (e *Engine) Subtotal(items []Item) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// Shipping is free at or above the threshold, otherwise the flat fee
func (e *Engine) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(e.cfg.FreeShippingThreshold) {
		return decimal.Zero
	}
	return e.cfg.ShippingFee
}

// Tax applies the tax rate to the shipped amount (subtotal plus
// shipping), rounded to cents.
func (e *Engine) Tax(subtotal, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Mul(e.cfg.TaxRate).Round(2)
}

// Quote prices a set of items. An empty set quotes to all zeros; no
// shipping fee is charged on nothing.
func (e *Engine) Quote(items []Item) Quote {
	if len(items) == 0 {
		return Quote{
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Tax:      decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	subtotal := e.Subtotal(items)
	shipping := e.Shipping(subtotal)
	tax := e.Tax(subtotal, shipping)

	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
