package command

import "github.com/example/giftbox-shop/internal/checkout"

// Cart Commands
type AddToCart struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"` // 0 means "one", matching the storefront's default
}

type UpdateCartQuantity struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
}

type ClearCart struct {
	SessionID string `json:"session_id"`
}

// Checkout Command
type Checkout struct {
	SessionID string             `json:"session_id"`
	Form      checkout.OrderForm `json:"form"`
}
