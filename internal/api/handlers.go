package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/giftbox-shop/internal/api/middleware"
	"github.com/example/giftbox-shop/internal/catalog"
	"github.com/example/giftbox-shop/internal/checkout"
	"github.com/example/giftbox-shop/internal/command"
	"github.com/example/giftbox-shop/internal/domain/cart"
	"github.com/example/giftbox-shop/internal/pricing"
	"github.com/example/giftbox-shop/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	pricer       *pricing.Engine
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, pricer *pricing.Engine) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		pricer:       pricer,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products := h.queryHandler.ListProducts()
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	product, ok := h.queryHandler.GetProduct(id)
	if !ok {
		respondError(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r)
	c := h.queryHandler.GetCart(sessionID)
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r)

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.AddToCart{
		SessionID: sessionID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := h.cmdHandler.AddToCart(r.Context(), cmd); err != nil {
		respondCartError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r)
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.UpdateCartQuantity{
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  req.Quantity,
	}
	if err := h.cmdHandler.UpdateCartQuantity(r.Context(), cmd); err != nil {
		respondCartError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r)
	productID := extractPathParam(r.URL.Path, "/cart/items/")
	cmd := command.RemoveFromCart{
		SessionID: sessionID,
		ProductID: productID,
	}
	if err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		respondCartError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r)
	cmd := command.ClearCart{SessionID: sessionID}
	if err := h.cmdHandler.ClearCart(r.Context(), cmd); err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetCartQuote prices the current cart without placing an order
func (h *Handlers) GetCartQuote(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r)
	c := h.queryHandler.GetCart(sessionID)

	items := make([]pricing.Item, len(c.Items))
	for i, item := range c.Items {
		items[i] = pricing.Item{Price: item.Price, Quantity: item.Quantity}
	}

	respondJSON(w, http.StatusOK, h.pricer.Quote(items))
}

// Checkout Handler

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r)

	var form checkout.OrderForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.cmdHandler.Checkout(r.Context(), command.Checkout{
		SessionID: sessionID,
		Form:      form,
	})
	if err != nil {
		var verr *command.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
			return
		}
		if errors.Is(err, command.ErrEmptyCart) {
			respondError(w, "Cart is empty", http.StatusBadRequest)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// Order Handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r)
	orders := h.queryHandler.ListOrdersBySession(sessionID)
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")

	order, ok := h.queryHandler.GetOrder(id)
	if !ok {
		respondError(w, "Order not found", http.StatusNotFound)
		return
	}

	// Sessions only see their own orders
	if order.SessionID != getSessionID(r) {
		respondError(w, "Order not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondCartError maps cart command failures to HTTP statuses
func respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, command.ErrOutOfStock):
		respondError(w, "Product is out of stock", http.StatusConflict)
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidProduct):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		respondError(w, err.Error(), http.StatusInternalServerError)
	}
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// getSessionID extracts the session id from the cookie context or falls
// back to the X-Session-ID header for API clients without cookies
func getSessionID(r *http.Request) string {
	if sessionID := middleware.GetSessionID(r.Context()); sessionID != "" {
		return sessionID
	}
	return r.Header.Get("X-Session-ID")
}
