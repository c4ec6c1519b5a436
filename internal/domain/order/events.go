package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced           = "OrderPlaced"
	EventOrderPaymentSucceeded = "OrderPaymentSucceeded"
	EventOrderPaymentFailed    = "OrderPaymentFailed"
)

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Totals is the priced breakdown captured when the order is placed
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Contact is who placed the order
type Contact struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ShippingAddress is where the order goes
type ShippingAddress struct {
	Company              string `json:"company,omitempty"`
	Address1             string `json:"address1"`
	Address2             string `json:"address2,omitempty"`
	City                 string `json:"city"`
	Province             string `json:"province,omitempty"`
	PostalCode           string `json:"postal_code"`
	DeliveryInstructions string `json:"delivery_instructions,omitempty"`
}

type OrderPlaced struct {
	OrderID   string          `json:"order_id"`
	SessionID string          `json:"session_id"`
	Items     []OrderItem     `json:"items"`
	Totals    Totals          `json:"totals"`
	Contact   Contact         `json:"contact"`
	Shipping  ShippingAddress `json:"shipping"`
	PlacedAt  time.Time       `json:"placed_at"`
}

type OrderPaymentSucceeded struct {
	OrderID     string    `json:"order_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type OrderPaymentFailed struct {
	OrderID  string    `json:"order_id"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}
