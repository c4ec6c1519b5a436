// Package payment settles placed orders. The authorizer here is a
// simulator that approves everything after a fixed delay; swapping in
// a real gateway means implementing Authorizer.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/giftbox-shop/internal/domain/cart"
	"github.com/example/giftbox-shop/internal/domain/order"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/example/giftbox-shop/internal/notification"
)

const DefaultAuthorizeDelay = 3 * time.Second

// Authorizer decides whether a payment goes through
type Authorizer interface {
	Authorize(ctx context.Context, o order.OrderPlaced) error
}

// SimulatedAuthorizer approves every payment after Delay
type SimulatedAuthorizer struct {
	Delay time.Duration
}

func NewSimulatedAuthorizer(delay time.Duration) *SimulatedAuthorizer {
	if delay <= 0 {
		delay = DefaultAuthorizeDelay
	}
	return &SimulatedAuthorizer{Delay: delay}
}

func (a *SimulatedAuthorizer) Authorize(ctx context.Context, o order.OrderPlaced) error {
	select {
	case <-time.After(a.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Processor consumes OrderPlaced events and settles them
type Processor struct {
	authorizer Authorizer
	orderSvc   *order.Service
	cartSvc    *cart.Service
	notifier   notification.Notifier
}

func NewProcessor(authorizer Authorizer, orderSvc *order.Service, cartSvc *cart.Service, notifier notification.Notifier) *Processor {
	return &Processor{
		authorizer: authorizer,
		orderSvc:   orderSvc,
		cartSvc:    cartSvc,
		notifier:   notifier,
	}
}

// HandleEvent consumes one stored event. Only OrderPlaced is acted on;
// everything else passes through. Satisfies both the local bus and
// Kafka handler signatures.
func (p *Processor) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	if event.AggregateType != order.AggregateType || event.EventType != order.EventOrderPlaced {
		return nil
	}

	var placed order.OrderPlaced
	if err := json.Unmarshal(event.Data, &placed); err != nil {
		return err
	}

	return p.settle(ctx, placed)
}

func (p *Processor) settle(ctx context.Context, placed order.OrderPlaced) error {
	log.Printf("[Payment] Processing payment for order %s (total: %s)", placed.OrderID, placed.Totals.Total.StringFixed(2))

	if err := p.authorizer.Authorize(ctx, placed); err != nil {
		log.Printf("[Payment] Payment declined for order %s: %v", placed.OrderID, err)

		if failErr := p.orderSvc.FailPayment(ctx, placed.OrderID, err.Error()); failErr != nil {
			return failErr
		}
		p.notifier.Notify(ctx, notification.Notice{
			Title:       "Payment Failed",
			Description: "There was an issue processing your payment. Please try again.",
			Severity:    notification.SeverityDestructive,
		})
		return nil
	}

	if err := p.orderSvc.ConfirmPayment(ctx, placed.OrderID); err != nil {
		return err
	}

	// The cart empties only once the payment clears
	if err := p.cartSvc.Clear(ctx, placed.SessionID); err != nil {
		log.Printf("[Payment] Failed to clear cart for session %s: %v", placed.SessionID, err)
	}

	log.Printf("[Payment] Payment confirmed for order %s", placed.OrderID)
	p.notifier.Notify(ctx, notification.Notice{
		Title:       "Order Placed Successfully!",
		Description: fmt.Sprintf("Thank you %s, your order of $%s is confirmed.", placed.Contact.FirstName, placed.Totals.Total.StringFixed(2)),
		Severity:    notification.SeverityDefault,
	})
	return nil
}
