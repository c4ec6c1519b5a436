package query

import (
	"sort"

	"github.com/example/giftbox-shop/internal/domain/cart"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
)

type Handler struct {
	readStore store.ReadStoreInterface
}

func NewHandler(readStore store.ReadStoreInterface) *Handler {
	return &Handler{readStore: readStore}
}

// Products
func (h *Handler) GetProduct(id string) (*ProductReadModel, bool) {
	data, ok := h.readStore.Get("products", id)
	if !ok {
		return nil, false
	}
	return data.(*ProductReadModel), true
}

// ListProducts returns all products in catalog display order
func (h *Handler) ListProducts() []*ProductReadModel {
	items := h.readStore.GetAll("products")
	products := make([]*ProductReadModel, 0, len(items))
	for _, item := range items {
		products = append(products, item.(*ProductReadModel))
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].SortOrder < products[j].SortOrder
	})
	return products
}

// Cart
func (h *Handler) GetCart(sessionID string) *CartReadModel {
	cartID := cart.GetCartID(sessionID)
	data, ok := h.readStore.Get("carts", cartID)
	if !ok {
		// Return empty cart
		return &CartReadModel{
			ID:        cartID,
			SessionID: sessionID,
			Items:     []CartItemReadModel{},
		}
	}
	return data.(*CartReadModel)
}

// Orders
func (h *Handler) GetOrder(id string) (*OrderReadModel, bool) {
	data, ok := h.readStore.Get("orders", id)
	if !ok {
		return nil, false
	}
	return data.(*OrderReadModel), true
}

// ListOrdersBySession returns a session's orders, most recent first
func (h *Handler) ListOrdersBySession(sessionID string) []*OrderReadModel {
	items := h.readStore.GetAll("orders")
	orders := make([]*OrderReadModel, 0)
	for _, item := range items {
		o := item.(*OrderReadModel)
		if o.SessionID == sessionID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}
