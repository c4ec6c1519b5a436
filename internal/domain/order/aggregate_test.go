package order

import (
	"context"
	"testing"

	"github.com/example/giftbox-shop/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	return service, eventStore
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testItems() []OrderItem {
	return []OrderItem{
		{ProductID: "1", Name: "Classic Gift Box", Price: dec("89.00"), Quantity: 2},
		{ProductID: "2", Name: "Gourmet Treats Box", Price: dec("65.00"), Quantity: 1},
	}
}

func testTotals() Totals {
	return Totals{
		Subtotal: dec("243.00"),
		Shipping: dec("0"),
		Tax:      dec("31.59"),
		Total:    dec("274.59"),
	}
}

func testContact() Contact {
	return Contact{
		Email:     "jamie@example.com",
		Phone:     "416-555-0134",
		FirstName: "Jamie",
		LastName:  "Park",
	}
}

func testShipping() ShippingAddress {
	return ShippingAddress{
		Address1:   "100 Queen St W",
		City:       "Toronto",
		Province:   "ON",
		PostalCode: "M5H 2N2",
	}
}

// ============================================
// Place Order Tests
// ============================================

func TestService_Place_Success(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "sess-123", testItems(), testTotals(), testContact(), testShipping())

	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "sess-123", order.SessionID)
	assert.Equal(t, testItems(), order.Items)
	assert.Equal(t, StatusProcessing, order.Status)
	assert.True(t, order.Totals.Total.Equal(dec("274.59")))

	// Verify event was stored
	assert.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventOrderPlaced, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, AggregateType, eventStore.AppendCalls[0].AggregateType)

	data := eventStore.AppendCalls[0].Data.(OrderPlaced)
	assert.Equal(t, order.ID, data.OrderID)
	assert.Equal(t, "jamie@example.com", data.Contact.Email)
	assert.Equal(t, "Toronto", data.Shipping.City)
}

func TestService_Place_EmptyItems(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "sess-123", nil, Totals{}, testContact(), testShipping())

	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Nil(t, order)
	assert.Empty(t, eventStore.AppendCalls)
}

func TestService_Place_UniqueOrderIDs(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	first, err := service.Place(ctx, "sess-123", testItems(), testTotals(), testContact(), testShipping())
	require.NoError(t, err)
	second, err := service.Place(ctx, "sess-123", testItems(), testTotals(), testContact(), testShipping())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

// ============================================
// Payment Result Tests
// ============================================

func TestService_ConfirmPayment_Success(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "sess-123", testItems(), testTotals(), testContact(), testShipping())
	require.NoError(t, err)

	err = service.ConfirmPayment(ctx, order.ID)

	require.NoError(t, err)
	assert.Len(t, eventStore.AppendCalls, 2)
	assert.Equal(t, EventOrderPaymentSucceeded, eventStore.AppendCalls[1].EventType)

	loaded, err := service.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, loaded.Status)
}

func TestService_ConfirmPayment_OrderNotFound(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	err := service.ConfirmPayment(ctx, "missing-order")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_ConfirmPayment_AlreadyConfirmed(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "sess-123", testItems(), testTotals(), testContact(), testShipping())
	require.NoError(t, err)
	require.NoError(t, service.ConfirmPayment(ctx, order.ID))

	err = service.ConfirmPayment(ctx, order.ID)

	assert.ErrorIs(t, err, ErrOrderSettled)
}

func TestService_FailPayment_Success(t *testing.T) {
	service, eventStore := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "sess-123", testItems(), testTotals(), testContact(), testShipping())
	require.NoError(t, err)

	err = service.FailPayment(ctx, order.ID, "card declined")

	require.NoError(t, err)
	assert.Equal(t, EventOrderPaymentFailed, eventStore.AppendCalls[1].EventType)

	loaded, err := service.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, loaded.Status)
	assert.Equal(t, "card declined", loaded.FailureReason)
}

func TestService_FailPayment_AfterConfirmRejected(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "sess-123", testItems(), testTotals(), testContact(), testShipping())
	require.NoError(t, err)
	require.NoError(t, service.ConfirmPayment(ctx, order.ID))

	err = service.FailPayment(ctx, order.ID, "card declined")

	assert.ErrorIs(t, err, ErrOrderSettled)
}

// ============================================
// Status Transition Tests
// ============================================

func TestOrder_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"processing to confirmed", StatusProcessing, StatusConfirmed, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"confirmed is terminal", StatusConfirmed, StatusFailed, false},
		{"failed is terminal", StatusFailed, StatusConfirmed, false},
		{"confirmed to confirmed", StatusConfirmed, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.allowed, o.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Replay Tests
// ============================================

func TestService_Get_ReplaysFullLifecycle(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	order, err := service.Place(ctx, "sess-123", testItems(), testTotals(), testContact(), testShipping())
	require.NoError(t, err)
	require.NoError(t, service.ConfirmPayment(ctx, order.ID))

	loaded, err := service.Get(ctx, order.ID)

	require.NoError(t, err)
	assert.Equal(t, order.ID, loaded.ID)
	assert.Equal(t, StatusConfirmed, loaded.Status)
	assert.Len(t, loaded.Items, 2)
	assert.True(t, loaded.Totals.Subtotal.Equal(dec("243.00")))
	assert.Equal(t, 2, loaded.Version)
}

func TestService_Get_NotFound(t *testing.T) {
	service, _ := newTestOrderService()
	ctx := context.Background()

	_, err := service.Get(ctx, "missing-order")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}
