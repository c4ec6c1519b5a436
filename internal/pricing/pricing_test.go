package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig())
}

// ============================================
// Subtotal Tests
// ============================================

func TestEngine_Subtotal(t *testing.T) {
	e := newTestEngine()

	items := []Item{
		{Price: dec("89.00"), Quantity: 2},
		{Price: dec("65.00"), Quantity: 1},
	}

	assert.True(t, e.Subtotal(items).Equal(dec("243.00")))
}

func TestEngine_Subtotal_Empty(t *testing.T) {
	e := newTestEngine()

	assert.True(t, e.Subtotal(nil).Equal(decimal.Zero))
}

// ============================================
// Shipping Tests
// ============================================

func TestEngine_Shipping(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name     string
		subtotal string
		expected string
	}{
		{"below threshold", "99.99", "15.99"},
		{"exactly at threshold", "100.00", "0"},
		{"above threshold", "150.00", "0"},
		{"small order", "45.00", "15.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Shipping(dec(tt.subtotal))
			assert.True(t, got.Equal(dec(tt.expected)), "got %s, want %s", got, tt.expected)
		})
	}
}

// ============================================
// Tax Tests
// ============================================

func TestEngine_Tax_AppliesToSubtotalPlusShipping(t *testing.T) {
	e := newTestEngine()

	// 45.00 + 15.99 = 60.99; 13% HST = 7.9287 -> 7.93
	tax := e.Tax(dec("45.00"), dec("15.99"))
	assert.True(t, tax.Equal(dec("7.93")), "got %s", tax)
}

func TestEngine_Tax_FreeShippingOrder(t *testing.T) {
	e := newTestEngine()

	tax := e.Tax(dec("100.00"), decimal.Zero)
	assert.True(t, tax.Equal(dec("13.00")), "got %s", tax)
}

func TestEngine_Tax_RoundsToCents(t *testing.T) {
	e := newTestEngine()

	// 55.00 + 15.99 = 70.99; 13% = 9.2287
	tax := e.Tax(dec("55.00"), dec("15.99"))
	assert.True(t, tax.Equal(dec("9.23")), "got %s", tax)
}

// ============================================
// Quote Tests
// ============================================

func TestEngine_Quote_FreeShippingBoundary(t *testing.T) {
	e := newTestEngine()

	// Two at 45.00 plus one at 10.00 lands exactly on 100.00
	items := []Item{
		{Price: dec("45.00"), Quantity: 2},
		{Price: dec("10.00"), Quantity: 1},
	}

	quote := e.Quote(items)

	assert.True(t, quote.Subtotal.Equal(dec("100.00")), "subtotal %s", quote.Subtotal)
	assert.True(t, quote.Shipping.Equal(decimal.Zero), "shipping %s", quote.Shipping)
	assert.True(t, quote.Tax.Equal(dec("13.00")), "tax %s", quote.Tax)
	assert.True(t, quote.Total.Equal(dec("113.00")), "total %s", quote.Total)

	// Taxing the subtotal alone gives the same figure only because
	// shipping is zero here; with paid shipping the bases differ.
	subtotalOnlyTax := quote.Subtotal.Mul(dec("0.13")).Round(2)
	assert.True(t, quote.Tax.Equal(subtotalOnlyTax))
}

func TestEngine_Quote_WithPaidShipping(t *testing.T) {
	e := newTestEngine()

	items := []Item{{Price: dec("45.00"), Quantity: 1}}

	quote := e.Quote(items)

	assert.True(t, quote.Subtotal.Equal(dec("45.00")))
	assert.True(t, quote.Shipping.Equal(dec("15.99")))
	assert.True(t, quote.Tax.Equal(dec("7.93")), "tax %s", quote.Tax)
	assert.True(t, quote.Total.Equal(dec("68.92")), "total %s", quote.Total)

	// Tax base includes shipping; the subtotal-only figure would be 5.85
	subtotalOnlyTax := quote.Subtotal.Mul(dec("0.13")).Round(2)
	assert.False(t, quote.Tax.Equal(subtotalOnlyTax))
}

func TestEngine_Quote_Empty(t *testing.T) {
	e := newTestEngine()

	quote := e.Quote(nil)

	assert.True(t, quote.Subtotal.Equal(decimal.Zero))
	assert.True(t, quote.Shipping.Equal(decimal.Zero))
	assert.True(t, quote.Tax.Equal(decimal.Zero))
	assert.True(t, quote.Total.Equal(decimal.Zero))
}

// ============================================
// Config Tests
// ============================================

func TestParseConfig_Valid(t *testing.T) {
	cfg, err := ParseConfig("100", "15.99", "0.13")

	assert.NoError(t, err)
	assert.True(t, cfg.FreeShippingThreshold.Equal(dec("100")))
	assert.True(t, cfg.ShippingFee.Equal(dec("15.99")))
	assert.True(t, cfg.TaxRate.Equal(dec("0.13")))
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig("lots", "15.99", "0.13")
	assert.Error(t, err)

	_, err = ParseConfig("100", "cheap", "0.13")
	assert.Error(t, err)

	_, err = ParseConfig("100", "15.99", "thirteen percent")
	assert.Error(t, err)
}

func TestEngine_Quote_ExactDecimals(t *testing.T) {
	e := newTestEngine()

	// 3 x 55.00 would drift under binary floats; decimals stay exact
	items := []Item{{Price: dec("55.00"), Quantity: 3}}

	quote := e.Quote(items)

	assert.True(t, quote.Subtotal.Equal(dec("165.00")))
	assert.True(t, quote.Shipping.Equal(decimal.Zero))
	assert.True(t, quote.Tax.Equal(dec("21.45")), "tax %s", quote.Tax)
	assert.True(t, quote.Total.Equal(dec("186.45")), "total %s", quote.Total)
}
