package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/giftbox-shop/internal/domain/aggregate"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Order"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order must have at least one item")
	ErrInvalidStatus = errors.New("invalid order status transition")
	ErrOrderSettled  = errors.New("order payment is already settled")
)

// validTransitions defines allowed state transitions
var validTransitions = map[Status][]Status{
	StatusProcessing: {StatusConfirmed, StatusFailed},
	StatusConfirmed:  {}, // terminal state
	StatusFailed:     {}, // terminal state
}

// CanTransitionTo checks if the order can transition to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// transitionError returns an appropriate error for an invalid transition
func (o *Order) transitionError(target Status) error {
	if o.Status == StatusConfirmed || o.Status == StatusFailed {
		return ErrOrderSettled
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
}

type Order struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	Items         []OrderItem     `json:"items"`
	Totals        Totals          `json:"totals"`
	Contact       Contact         `json:"contact"`
	Shipping      ShippingAddress `json:"shipping"`
	Status        Status          `json:"status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"` // Current event version
}

// Aggregate interface implementation
func (o *Order) GetID() string    { return o.ID }
func (o *Order) GetVersion() int  { return o.Version }
func (o *Order) SetVersion(v int) { o.Version = v }

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// ApplyEvent applies a single event to the order state (implements aggregate.Aggregate)
func (o *Order) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventOrderPlaced:
		var data OrderPlaced
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.ID = data.OrderID
		o.SessionID = data.SessionID
		o.Items = data.Items
		o.Totals = data.Totals
		o.Contact = data.Contact
		o.Shipping = data.Shipping
		o.Status = StatusProcessing
		o.CreatedAt = data.PlacedAt
		o.UpdatedAt = data.PlacedAt
	case EventOrderPaymentSucceeded:
		var data OrderPaymentSucceeded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusConfirmed
		o.UpdatedAt = data.ConfirmedAt
	case EventOrderPaymentFailed:
		var data OrderPaymentFailed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusFailed
		o.FailureReason = data.Reason
		o.UpdatedAt = data.FailedAt
	}
	o.Version = event.Version
	return nil
}

// loadOrder loads an order by replaying events, using snapshot if available
func (s *Service) loadOrder(ctx context.Context, orderID string) (*Order, error) {
	order, found, err := aggregate.LoadAggregate(ctx, s.eventStore, orderID, func() *Order {
		return &Order{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Get returns the current state of an order
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.loadOrder(ctx, orderID)
}

// Place creates a new order in processing status. The priced totals and
// the customer snapshot are captured in the OrderPlaced event.
func (s *Service) Place(ctx context.Context, sessionID string, items []OrderItem, totals Totals, contact Contact, shipping ShippingAddress) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	orderID := uuid.New().String()
	now := time.Now()

	event := OrderPlaced{
		OrderID:   orderID,
		SessionID: sessionID,
		Items:     items,
		Totals:    totals,
		Contact:   contact,
		Shipping:  shipping,
		PlacedAt:  now,
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderPlaced, event)
	if err != nil {
		return nil, err
	}

	version := 0
	if storedEvent != nil {
		version = storedEvent.Version
	}

	order := &Order{
		ID:        orderID,
		SessionID: sessionID,
		Items:     items,
		Totals:    totals,
		Contact:   contact,
		Shipping:  shipping,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   version,
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}

	return order, nil
}

// ConfirmPayment records a successful payment and moves the order to confirmed
func (s *Service) ConfirmPayment(ctx context.Context, orderID string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanTransitionTo(StatusConfirmed) {
		return order.transitionError(StatusConfirmed)
	}

	event := OrderPaymentSucceeded{
		OrderID:     orderID,
		ConfirmedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderPaymentSucceeded, event)
	if err != nil {
		return err
	}

	order.Status = StatusConfirmed
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}

	return nil
}

// FailPayment records a declined payment and moves the order to failed
func (s *Service) FailPayment(ctx context.Context, orderID, reason string) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanTransitionTo(StatusFailed) {
		return order.transitionError(StatusFailed)
	}

	event := OrderPaymentFailed{
		OrderID:  orderID,
		Reason:   reason,
		FailedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderPaymentFailed, event)
	if err != nil {
		return err
	}

	order.Status = StatusFailed
	order.FailureReason = reason
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}

	return nil
}
