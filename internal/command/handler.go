package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/giftbox-shop/internal/catalog"
	"github.com/example/giftbox-shop/internal/checkout"
	"github.com/example/giftbox-shop/internal/domain/cart"
	"github.com/example/giftbox-shop/internal/domain/order"
	"github.com/example/giftbox-shop/internal/notification"
	"github.com/example/giftbox-shop/internal/pricing"
)

var (
	ErrOutOfStock = errors.New("product is out of stock")
	ErrEmptyCart  = errors.New("cart is empty")
)

// ValidationError carries the full field-to-message map produced by the
// order form validator.
type ValidationError struct {
	Fields checkout.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order form is invalid: %d field(s) failed validation", len(e.Fields))
}

type Handler struct {
	catalog  *catalog.Catalog
	cartSvc  *cart.Service
	orderSvc *order.Service
	pricer   *pricing.Engine
	notifier notification.Notifier
}

func NewHandler(
	cat *catalog.Catalog,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	pricer *pricing.Engine,
	notifier notification.Notifier,
) *Handler {
	return &Handler{
		catalog:  cat,
		cartSvc:  cartSvc,
		orderSvc: orderSvc,
		pricer:   pricer,
		notifier: notifier,
	}
}

// AddToCart adds a catalog product to the session's cart. Unknown and
// out-of-stock products are rejected here; the cart itself stays
// permissive about product ids.
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) error {
	p, err := h.catalog.Get(cmd.ProductID)
	if err != nil {
		return err
	}
	if !p.InStock {
		return ErrOutOfStock
	}

	quantity := cmd.Quantity
	if quantity == 0 {
		quantity = 1
	}

	err = h.cartSvc.AddItem(ctx, cmd.SessionID, cart.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image(),
		Quantity:  quantity,
	})
	if err != nil {
		return err
	}

	h.notifier.Notify(ctx, notification.Notice{
		Title:       "Added to Cart!",
		Description: p.Name + " has been added to your cart.",
		Severity:    notification.SeverityDefault,
	})
	return nil
}

// UpdateCartQuantity sets the absolute quantity of a cart line
func (h *Handler) UpdateCartQuantity(ctx context.Context, cmd UpdateCartQuantity) error {
	return h.cartSvc.UpdateQuantity(ctx, cmd.SessionID, cmd.ProductID, cmd.Quantity)
}

// RemoveFromCart removes a line from the cart
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	return h.cartSvc.RemoveItem(ctx, cmd.SessionID, cmd.ProductID)
}

// ClearCart clears all items from cart
func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.SessionID)
}

// Checkout validates the order form, prices the cart and places the
// order. The order starts in processing; the payment processor settles
// it (and clears the cart) asynchronously.
func (h *Handler) Checkout(ctx context.Context, cmd Checkout) (*order.Order, error) {
	if errs := checkout.Validate(cmd.Form); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	c, err := h.cartSvc.GetCart(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		h.notifier.Notify(ctx, notification.Notice{
			Title:       "Cart is Empty",
			Description: "Please add items to your cart before placing an order.",
			Severity:    notification.SeverityDestructive,
		})
		return nil, ErrEmptyCart
	}

	priceItems := make([]pricing.Item, len(c.Items))
	orderItems := make([]order.OrderItem, len(c.Items))
	for i, item := range c.Items {
		priceItems[i] = pricing.Item{Price: item.Price, Quantity: item.Quantity}
		orderItems[i] = order.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	quote := h.pricer.Quote(priceItems)

	totals := order.Totals{
		Subtotal: quote.Subtotal,
		Shipping: quote.Shipping,
		Tax:      quote.Tax,
		Total:    quote.Total,
	}
	contact := order.Contact{
		Email:     cmd.Form.Email,
		Phone:     cmd.Form.Phone,
		FirstName: cmd.Form.FirstName,
		LastName:  cmd.Form.LastName,
	}
	shipping := order.ShippingAddress{
		Company:              cmd.Form.Company,
		Address1:             cmd.Form.Address1,
		Address2:             cmd.Form.Address2,
		City:                 cmd.Form.City,
		Province:             cmd.Form.Province,
		PostalCode:           cmd.Form.PostalCode,
		DeliveryInstructions: cmd.Form.DeliveryInstructions,
	}

	return h.orderSvc.Place(ctx, cmd.SessionID, orderItems, totals, contact, shipping)
}
