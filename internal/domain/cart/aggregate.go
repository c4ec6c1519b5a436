package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/shopspring/decimal"
)

const AggregateType = "Cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
)

type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Cart is the event-sourced cart state. Items keep the order in which
// products were first added.
type Cart struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	Version   int        `json:"version"`
}

// findItem returns the index of the item for productID, or -1
func (c *Cart) findItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// ItemCount returns the sum of all line quantities
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns the sum of price times quantity over all lines
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// GetCartID returns the cart ID for a session (one cart per session)
func GetCartID(sessionID string) string {
	return "cart-" + sessionID
}

// applyEvent applies a single event to the cart state
func (c *Cart) applyEvent(event store.Event) error {
	switch event.EventType {
	case EventItemAdded:
		var data ItemAddedToCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.ID = data.CartID
		c.SessionID = data.SessionID
		if i := c.findItem(data.ProductID); i >= 0 {
			c.Items[i].Quantity += data.Quantity
			c.Items[i].Name = data.Name
			c.Items[i].Price = data.Price
			c.Items[i].Image = data.Image
		} else {
			c.Items = append(c.Items, CartItem{
				ProductID: data.ProductID,
				Name:      data.Name,
				Price:     data.Price,
				Image:     data.Image,
				Quantity:  data.Quantity,
			})
		}
	case EventQuantityUpdated:
		var data CartItemQuantityUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if i := c.findItem(data.ProductID); i >= 0 {
			quantity := data.Quantity
			if quantity < 1 {
				quantity = 1
			}
			c.Items[i].Quantity = quantity
		}
	case EventItemRemoved:
		var data ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if i := c.findItem(data.ProductID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
	case EventCartCleared:
		var data CartCleared
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.Items = nil
	}
	c.Version = event.Version
	return nil
}

// loadCart loads a cart by replaying events, using snapshot if available
func (s *Service) loadCart(ctx context.Context, cartID string) (*Cart, error) {
	cart := &Cart{ID: cartID}

	snapshot, err := s.eventStore.GetSnapshot(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var events []store.Event
	if snapshot != nil {
		if err := json.Unmarshal(snapshot.State, cart); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		events = s.eventStore.GetEventsFromVersion(ctx, cartID, snapshot.Version)
	} else {
		events = s.eventStore.GetEvents(cartID)
	}

	for _, event := range events {
		if err := cart.applyEvent(event); err != nil {
			return nil, fmt.Errorf("failed to apply event: %w", err)
		}
	}

	return cart, nil
}

// maybeCreateSnapshot creates a snapshot if the threshold is exceeded
func (s *Service) maybeCreateSnapshot(ctx context.Context, cart *Cart) error {
	if cart.Version > 0 && cart.Version%store.SnapshotThreshold == 0 {
		state, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("failed to marshal cart state: %w", err)
		}

		snapshot := &store.Snapshot{
			AggregateID:   cart.ID,
			AggregateType: AggregateType,
			Version:       cart.Version,
			State:         state,
			CreatedAt:     time.Now(),
		}

		if err := s.eventStore.SaveSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}
	return nil
}

// GetCart returns the current cart state for a session. A session that
// never touched its cart gets an empty cart, not an error.
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	cartID := GetCartID(sessionID)
	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.SessionID == "" {
		cart.SessionID = sessionID
	}
	return cart, nil
}

// AddItem appends an ItemAddedToCart event. Adding a product that is
// already in the cart increments its quantity.
func (s *Service) AddItem(ctx context.Context, sessionID string, item CartItem) error {
	if item.ProductID == "" {
		return ErrInvalidProduct
	}
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	cartID := GetCartID(sessionID)

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		cart = &Cart{ID: cartID, SessionID: sessionID}
	}

	event := ItemAddedToCart{
		CartID:    cartID,
		SessionID: sessionID,
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		Image:     item.Image,
		Quantity:  item.Quantity,
		AddedAt:   time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, EventItemAdded, event)
	if err != nil {
		return err
	}

	// Snapshots must capture post-event state, so apply the appended
	// event before the threshold check.
	if storedEvent != nil {
		if err := cart.applyEvent(*storedEvent); err != nil {
			return err
		}
	}

	if err := s.maybeCreateSnapshot(ctx, cart); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}

	return nil
}

// UpdateQuantity sets the absolute quantity of a line. Quantities below
// one are clamped to one; lowering a quantity never removes the line.
// Updating a product that is not in the cart is a no-op.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	cartID := GetCartID(sessionID)

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return err
	}
	if cart.findItem(productID) < 0 {
		return nil
	}

	if quantity < 1 {
		quantity = 1
	}

	event := CartItemQuantityUpdated{
		CartID:    cartID,
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
		UpdatedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, EventQuantityUpdated, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		if err := cart.applyEvent(*storedEvent); err != nil {
			return err
		}
	}

	if err := s.maybeCreateSnapshot(ctx, cart); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}

	return nil
}

// RemoveItem drops a line from the cart regardless of its quantity.
// Removing a product that is not in the cart is a no-op.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) error {
	if productID == "" {
		return ErrInvalidProduct
	}

	cartID := GetCartID(sessionID)

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return err
	}
	if cart.findItem(productID) < 0 {
		return nil
	}

	event := ItemRemovedFromCart{
		CartID:    cartID,
		SessionID: sessionID,
		ProductID: productID,
		RemovedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, EventItemRemoved, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		if err := cart.applyEvent(*storedEvent); err != nil {
			return err
		}
	}

	if err := s.maybeCreateSnapshot(ctx, cart); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}

	return nil
}

// Clear empties the cart in a single event
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	cartID := GetCartID(sessionID)

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		cart = &Cart{ID: cartID, SessionID: sessionID}
	}

	event := CartCleared{
		CartID:    cartID,
		SessionID: sessionID,
		ClearedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, EventCartCleared, event)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		if err := cart.applyEvent(*storedEvent); err != nil {
			return err
		}
	}

	if err := s.maybeCreateSnapshot(ctx, cart); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}

	return nil
}
