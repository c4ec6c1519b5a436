package email

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildOrderConfirmationBody_FullBreakdown(t *testing.T) {
	body := BuildOrderConfirmationBody(OrderSummary{
		OrderID:   "order-123",
		FirstName: "Jamie",
		Items: []OrderItem{
			{ProductID: "3", Name: "Spa Day Essentials", Quantity: 1, Price: decimal.RequireFromString("45.00")},
		},
		Subtotal: decimal.RequireFromString("45.00"),
		Shipping: decimal.RequireFromString("15.99"),
		Tax:      decimal.RequireFromString("7.93"),
		Total:    decimal.RequireFromString("68.92"),
	})

	assert.Contains(t, body, "Thank you for your order, Jamie")
	assert.Contains(t, body, "order-123")
	assert.Contains(t, body, "Spa Day Essentials")
	assert.Contains(t, body, "$45.00")
	assert.Contains(t, body, "$15.99")
	assert.Contains(t, body, "$7.93")
	assert.Contains(t, body, "$68.92")
}

func TestBuildOrderConfirmationBody_FreeShipping(t *testing.T) {
	body := BuildOrderConfirmationBody(OrderSummary{
		OrderID: "order-456",
		Items: []OrderItem{
			{ProductID: "4", Name: "Luxury Jewelry Collection", Quantity: 1, Price: decimal.RequireFromString("150.00")},
		},
		Subtotal: decimal.RequireFromString("150.00"),
		Shipping: decimal.Zero,
		Tax:      decimal.RequireFromString("19.50"),
		Total:    decimal.RequireFromString("169.50"),
	})

	assert.Contains(t, body, "FREE")
	assert.NotContains(t, body, "$0.00")
}

func TestBuildOrderConfirmationBody_FallsBackToProductID(t *testing.T) {
	body := BuildOrderConfirmationBody(OrderSummary{
		OrderID: "order-789",
		Items: []OrderItem{
			{ProductID: "2", Quantity: 2, Price: decimal.RequireFromString("65.00")},
		},
		Subtotal: decimal.RequireFromString("130.00"),
		Shipping: decimal.Zero,
		Tax:      decimal.RequireFromString("16.90"),
		Total:    decimal.RequireFromString("146.90"),
	})

	assert.Contains(t, body, ">2</td>")
	assert.Contains(t, body, "$130.00")
}
