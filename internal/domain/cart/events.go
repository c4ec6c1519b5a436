package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventItemAdded       = "ItemAddedToCart"
	EventQuantityUpdated = "CartItemQuantityUpdated"
	EventItemRemoved     = "ItemRemovedFromCart"
	EventCartCleared     = "CartCleared"
)

// ItemAddedToCart carries a full product snapshot so projections never
// have to look the product up again.
type ItemAddedToCart struct {
	CartID    string          `json:"cart_id"`
	SessionID string          `json:"session_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

type CartItemQuantityUpdated struct {
	CartID    string    `json:"cart_id"`
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"` // absolute value, already clamped to >= 1
	UpdatedAt time.Time `json:"updated_at"`
}

type ItemRemovedFromCart struct {
	CartID    string    `json:"cart_id"`
	SessionID string    `json:"session_id"`
	ProductID string    `json:"product_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type CartCleared struct {
	CartID    string    `json:"cart_id"`
	SessionID string    `json:"session_id"`
	ClearedAt time.Time `json:"cleared_at"`
}
