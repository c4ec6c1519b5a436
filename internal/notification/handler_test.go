package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/giftbox-shop/internal/domain/order"
	"github.com/example/giftbox-shop/internal/email"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/example/giftbox-shop/internal/infrastructure/store/mocks"
	"github.com/example/giftbox-shop/internal/readmodel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	to      string
	summary email.OrderSummary
}

func (f *fakeSender) SendOrderConfirmation(to string, summary email.OrderSummary) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, summary: summary})
	return nil
}

func newTestNotificationHandler() (*Handler, *fakeSender, *mocks.MockReadStore) {
	sender := &fakeSender{}
	readStore := mocks.NewMockReadStore()
	handler := NewHandler(sender, readStore)
	return handler, sender, readStore
}

func seedOrder(readStore *mocks.MockReadStore, orderID, emailAddr string) {
	readStore.SetData("orders", orderID, &readmodel.OrderReadModel{
		ID:        orderID,
		SessionID: "sess-1",
		Email:     emailAddr,
		Items: []readmodel.OrderItemReadModel{
			{ProductID: "3", Name: "Spa Day Essentials", Price: decimal.RequireFromString("45.00"), Quantity: 1},
		},
		Subtotal: decimal.RequireFromString("45.00"),
		Shipping: decimal.RequireFromString("15.99"),
		Tax:      decimal.RequireFromString("7.93"),
		Total:    decimal.RequireFromString("68.92"),
		Status:   "confirmed",
	})
}

func succeededEvent(orderID string) []byte {
	data, _ := json.Marshal(order.OrderPaymentSucceeded{OrderID: orderID, ConfirmedAt: time.Now()})
	value, _ := json.Marshal(store.Event{
		ID:            "event-1",
		AggregateID:   orderID,
		AggregateType: order.AggregateType,
		EventType:     order.EventOrderPaymentSucceeded,
		Data:          data,
	})
	return value
}

// ============================================
// Notification Handler Tests
// ============================================

func TestHandler_PaymentSucceeded_SendsConfirmation(t *testing.T) {
	handler, sender, readStore := newTestNotificationHandler()
	seedOrder(readStore, "order-123", "jamie@example.com")

	err := handler.HandleEvent(context.Background(), nil, succeededEvent("order-123"))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jamie@example.com", sender.sent[0].to)
	assert.Equal(t, "order-123", sender.sent[0].summary.OrderID)
	assert.True(t, sender.sent[0].summary.Total.Equal(decimal.RequireFromString("68.92")))
	require.Len(t, sender.sent[0].summary.Items, 1)
	assert.Equal(t, "Spa Day Essentials", sender.sent[0].summary.Items[0].Name)
}

func TestHandler_PaymentSucceeded_OrderMissing(t *testing.T) {
	handler, sender, _ := newTestNotificationHandler()

	err := handler.HandleEvent(context.Background(), nil, succeededEvent("order-missing"))

	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandler_PaymentSucceeded_NoEmailSkips(t *testing.T) {
	handler, sender, readStore := newTestNotificationHandler()
	seedOrder(readStore, "order-123", "")

	err := handler.HandleEvent(context.Background(), nil, succeededEvent("order-123"))

	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandler_PaymentSucceeded_SendFailurePropagates(t *testing.T) {
	handler, sender, readStore := newTestNotificationHandler()
	sender.err = errors.New("smtp unreachable")
	seedOrder(readStore, "order-123", "jamie@example.com")

	err := handler.HandleEvent(context.Background(), nil, succeededEvent("order-123"))

	assert.Error(t, err)
}

func TestHandler_IgnoresOtherEventTypes(t *testing.T) {
	handler, sender, readStore := newTestNotificationHandler()
	seedOrder(readStore, "order-123", "jamie@example.com")

	data, _ := json.Marshal(order.OrderPaymentFailed{OrderID: "order-123", Reason: "card declined"})
	value, _ := json.Marshal(store.Event{
		ID:            "event-1",
		AggregateID:   "order-123",
		AggregateType: order.AggregateType,
		EventType:     order.EventOrderPaymentFailed,
		Data:          data,
	})

	err := handler.HandleEvent(context.Background(), nil, value)

	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
}
