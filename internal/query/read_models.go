package query

// Re-export read models from readmodel package for backward compatibility
import "github.com/example/giftbox-shop/internal/readmodel"

type ProductReadModel = readmodel.ProductReadModel
type CartItemReadModel = readmodel.CartItemReadModel
type CartReadModel = readmodel.CartReadModel
type OrderItemReadModel = readmodel.OrderItemReadModel
type OrderReadModel = readmodel.OrderReadModel
