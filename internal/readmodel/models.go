package readmodel

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductReadModel is the read model for catalog products
type ProductReadModel struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Featured    bool            `json:"featured"`
	InStock     bool            `json:"inStock"`
	SortOrder   int             `json:"-"` // catalog display position
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartItemReadModel represents one line in the cart
type CartItemReadModel struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// CartReadModel is the read model for shopping carts.
// Items keep their insertion order.
type CartReadModel struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id"`
	Items     []CartItemReadModel `json:"items"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	ItemCount int                 `json:"item_count"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Clone returns a copy with its own items slice. The projector updates
// carts copy-on-write so pointers already handed to readers stay stable.
func (c *CartReadModel) Clone() *CartReadModel {
	clone := *c
	clone.Items = append([]CartItemReadModel(nil), c.Items...)
	return &clone
}

// OrderItemReadModel represents one line in an order
type OrderItemReadModel struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderReadModel is the read model for orders
type OrderReadModel struct {
	ID        string               `json:"id"`
	SessionID string               `json:"session_id"`
	Email     string               `json:"email"`
	Items     []OrderItemReadModel `json:"items"`
	Subtotal  decimal.Decimal      `json:"subtotal"`
	Shipping  decimal.Decimal      `json:"shipping"`
	Tax       decimal.Decimal      `json:"tax"`
	Total     decimal.Decimal      `json:"total"`
	Status    string               `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Clone returns a copy with its own items slice
func (o *OrderReadModel) Clone() *OrderReadModel {
	clone := *o
	clone.Items = append([]OrderItemReadModel(nil), o.Items...)
	return &clone
}
