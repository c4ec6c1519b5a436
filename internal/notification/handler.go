package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/giftbox-shop/internal/domain/order"
	"github.com/example/giftbox-shop/internal/email"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/example/giftbox-shop/internal/readmodel"
)

// Handler processes events for sending notifications
type Handler struct {
	emailSender email.Sender
	readStore   store.ReadStoreInterface
}

// NewHandler creates a new notification handler
func NewHandler(emailSender email.Sender, readStore store.ReadStoreInterface) *Handler {
	return &Handler{
		emailSender: emailSender,
		readStore:   readStore,
	}
}

// HandleEvent processes a stored event. Satisfies both the local bus
// and Kafka handler signatures.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	// The confirmation goes out once payment has cleared
	if event.EventType == order.EventOrderPaymentSucceeded {
		return h.handlePaymentSucceeded(event)
	}

	return nil
}

func (h *Handler) handlePaymentSucceeded(event store.Event) error {
	var e order.OrderPaymentSucceeded
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPaymentSucceeded event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing confirmed order %s", e.OrderID)

	// The projector writes the order read model before payment settles,
	// so the order is expected to be there by now.
	orderData, exists := h.readStore.Get("orders", e.OrderID)
	if !exists {
		log.Printf("[Notifier] Order not found: %s", e.OrderID)
		return nil
	}

	o, ok := orderData.(*readmodel.OrderReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid order data type for order: %s", e.OrderID)
		return nil
	}
	if o.Email == "" {
		log.Printf("[Notifier] Order %s has no email address, skipping", e.OrderID)
		return nil
	}

	emailItems := make([]email.OrderItem, len(o.Items))
	for i, item := range o.Items {
		emailItems[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	summary := email.OrderSummary{
		OrderID:  o.ID,
		Items:    emailItems,
		Subtotal: o.Subtotal,
		Shipping: o.Shipping,
		Tax:      o.Tax,
		Total:    o.Total,
	}

	if err := h.emailSender.SendOrderConfirmation(o.Email, summary); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", o.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", o.Email, o.ID)
	return nil
}
