package projection

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/example/giftbox-shop/internal/catalog"
	"github.com/example/giftbox-shop/internal/domain/cart"
	"github.com/example/giftbox-shop/internal/domain/order"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/example/giftbox-shop/internal/readmodel"
	"github.com/shopspring/decimal"
)

type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

// SeedProducts writes the catalog into the products collection. The
// catalog is static, so this runs once at startup rather than being
// driven by events.
func (p *Projector) SeedProducts(cat *catalog.Catalog) {
	now := time.Now()
	for i, prod := range cat.Products() {
		p.readStore.Set("products", prod.ID, &readmodel.ProductReadModel{
			ID:          prod.ID,
			Name:        prod.Name,
			Description: prod.Description,
			Price:       prod.Price,
			Image:       prod.Image(),
			Featured:    prod.Featured,
			InStock:     prod.InStock,
			SortOrder:   i,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	log.Printf("[Projector] Seeded %d products", cat.Len())
}

// Replay rebuilds read models from the full event history. Used at
// startup before live consumption begins.
func (p *Projector) Replay(ctx context.Context, events []store.Event) error {
	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := p.HandleEvent(ctx, []byte(event.AggregateID), value); err != nil {
			return err
		}
	}
	log.Printf("[Projector] Replayed %d events", len(events))
	return nil
}

// HandleEvent consumes one stored event and updates the read models.
// Satisfies both the local bus and Kafka handler signatures.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	log.Printf("[Projector] Received event: %s (aggregate: %s)", event.EventType, event.AggregateType)

	switch event.AggregateType {
	case cart.AggregateType:
		return p.handleCartEvent(event)
	case order.AggregateType:
		return p.handleOrderEvent(event)
	}

	return nil
}

func (p *Projector) handleCartEvent(event store.Event) error {
	switch event.EventType {
	case cart.EventItemAdded:
		var e cart.ItemAddedToCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}

		_, ok := p.readStore.Get("carts", e.CartID)
		if !ok {
			// Create new cart
			c := &readmodel.CartReadModel{
				ID:        e.CartID,
				SessionID: e.SessionID,
				Items: []readmodel.CartItemReadModel{
					{ProductID: e.ProductID, Name: e.Name, Price: e.Price, Image: e.Image, Quantity: e.Quantity},
				},
				UpdatedAt: e.AddedAt,
			}
			recalculateCart(c)
			p.readStore.Set("carts", e.CartID, c)
		} else {
			// Merge into existing cart, keeping line order. Updates go
			// through Clone so models already returned to readers are
			// never mutated behind their backs.
			p.readStore.Update("carts", e.CartID, func(current any) any {
				c := current.(*readmodel.CartReadModel).Clone()
				found := false
				for i, item := range c.Items {
					if item.ProductID == e.ProductID {
						c.Items[i].Quantity += e.Quantity
						found = true
						break
					}
				}
				if !found {
					c.Items = append(c.Items, readmodel.CartItemReadModel{
						ProductID: e.ProductID,
						Name:      e.Name,
						Price:     e.Price,
						Image:     e.Image,
						Quantity:  e.Quantity,
					})
				}
				c.UpdatedAt = e.AddedAt
				recalculateCart(c)
				return c
			})
		}

	case cart.EventQuantityUpdated:
		var e cart.CartItemQuantityUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("carts", e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel).Clone()
			for i, item := range c.Items {
				if item.ProductID == e.ProductID {
					c.Items[i].Quantity = e.Quantity
					break
				}
			}
			c.UpdatedAt = e.UpdatedAt
			recalculateCart(c)
			return c
		})

	case cart.EventItemRemoved:
		var e cart.ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("carts", e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel).Clone()
			newItems := make([]readmodel.CartItemReadModel, 0, len(c.Items))
			for _, item := range c.Items {
				if item.ProductID != e.ProductID {
					newItems = append(newItems, item)
				}
			}
			c.Items = newItems
			c.UpdatedAt = e.RemovedAt
			recalculateCart(c)
			return c
		})

	case cart.EventCartCleared:
		var e cart.CartCleared
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("carts", e.CartID, &readmodel.CartReadModel{
			ID:        e.CartID,
			SessionID: e.SessionID,
			Items:     []readmodel.CartItemReadModel{},
			Subtotal:  decimal.Zero,
			ItemCount: 0,
			UpdatedAt: e.ClearedAt,
		})
	}

	return nil
}

func (p *Projector) handleOrderEvent(event store.Event) error {
	switch event.EventType {
	case order.EventOrderPlaced:
		var e order.OrderPlaced
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		items := make([]readmodel.OrderItemReadModel, len(e.Items))
		for i, item := range e.Items {
			items[i] = readmodel.OrderItemReadModel{
				ProductID: item.ProductID,
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
			}
		}
		p.readStore.Set("orders", e.OrderID, &readmodel.OrderReadModel{
			ID:        e.OrderID,
			SessionID: e.SessionID,
			Email:     e.Contact.Email,
			Items:     items,
			Subtotal:  e.Totals.Subtotal,
			Shipping:  e.Totals.Shipping,
			Tax:       e.Totals.Tax,
			Total:     e.Totals.Total,
			Status:    string(order.StatusProcessing),
			CreatedAt: e.PlacedAt,
			UpdatedAt: e.PlacedAt,
		})

	case order.EventOrderPaymentSucceeded:
		var e order.OrderPaymentSucceeded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("orders", e.OrderID, func(current any) any {
			o := current.(*readmodel.OrderReadModel).Clone()
			o.Status = string(order.StatusConfirmed)
			o.UpdatedAt = e.ConfirmedAt
			return o
		})

	case order.EventOrderPaymentFailed:
		var e order.OrderPaymentFailed
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("orders", e.OrderID, func(current any) any {
			o := current.(*readmodel.OrderReadModel).Clone()
			o.Status = string(order.StatusFailed)
			o.UpdatedAt = e.FailedAt
			return o
		})
	}

	return nil
}

func recalculateCart(c *readmodel.CartReadModel) {
	subtotal := decimal.Zero
	count := 0
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}
	c.Subtotal = subtotal
	c.ItemCount = count
}
