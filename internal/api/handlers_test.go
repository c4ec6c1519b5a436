package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/giftbox-shop/internal/catalog"
	"github.com/example/giftbox-shop/internal/checkout"
	"github.com/example/giftbox-shop/internal/command"
	"github.com/example/giftbox-shop/internal/domain/cart"
	"github.com/example/giftbox-shop/internal/domain/order"
	"github.com/example/giftbox-shop/internal/infrastructure/store"
	"github.com/example/giftbox-shop/internal/notification"
	"github.com/example/giftbox-shop/internal/payment"
	"github.com/example/giftbox-shop/internal/pricing"
	"github.com/example/giftbox-shop/internal/projection"
	"github.com/example/giftbox-shop/internal/query"
	"github.com/example/giftbox-shop/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testShop wires the whole flow through the in-process bus, the same
// shape cmd/api uses in single-binary mode.
type testShop struct {
	router http.Handler
	bus    *store.LocalBus
}

func newTestShop(t *testing.T) *testShop {
	t.Helper()

	bus := store.NewLocalBus()
	eventStore := store.NewEventStore(bus)
	readStore := store.NewReadStore()
	cat := catalog.MustLoad()

	projector := projection.NewProjector(readStore)
	projector.SeedProducts(cat)
	bus.Subscribe("projector", projector.HandleEvent)

	cartSvc := cart.NewService(eventStore)
	orderSvc := order.NewService(eventStore)
	pricer := pricing.NewEngine(pricing.DefaultConfig())

	processor := payment.NewProcessor(payment.NewSimulatedAuthorizer(time.Millisecond), orderSvc, cartSvc, notification.NopNotifier{})
	bus.Subscribe("payment", processor.HandleEvent)

	cmdHandler := command.NewHandler(cat, cartSvc, orderSvc, pricer, notification.NopNotifier{})
	queryHandler := query.NewHandler(readStore)
	handlers := NewHandlers(cmdHandler, queryHandler, pricer)

	return &testShop{
		router: NewRouter(handlers, nil, ""),
		bus:    bus,
	}
}

func (s *testShop) do(t *testing.T, method, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

const checkoutForm = `{
	"email": "jamie@example.com",
	"phone": "613-555-0188",
	"firstName": "Jamie",
	"lastName": "Park",
	"address1": "240 Sparks St",
	"city": "Ottawa",
	"postalCode": "K1P 6C9",
	"cardNumber": "4242424242424242",
	"expiryDate": "12/27",
	"cvv": "123",
	"cardName": "Jamie Park",
	"termsAccepted": true
}`

// The fixture must decode into a form the validator accepts, or every
// checkout test degrades into a 422 assertion.
func TestCheckoutFormFixturePassesValidation(t *testing.T) {
	var form checkout.OrderForm
	require.NoError(t, json.Unmarshal([]byte(checkoutForm), &form))
	assert.Empty(t, checkout.Validate(form))
}

// ============================================
// Product Endpoint Tests
// ============================================

func TestAPI_GetProducts(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodGet, "/products", "sess-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var products []map[string]any
	decodeBody(t, rec, &products)
	require.Len(t, products, 6)
	assert.Equal(t, "1", products[0]["id"])
	assert.Equal(t, "Elegant Rose Gold Collection", products[0]["name"])
}

func TestAPI_GetProduct_Found(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodGet, "/products/4", "sess-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var product map[string]any
	decodeBody(t, rec, &product)
	assert.Equal(t, "Luxury Jewelry Collection", product["name"])
	assert.Equal(t, "150", product["price"])
}

func TestAPI_GetProduct_NotFound(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodGet, "/products/999", "sess-1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================
// Cart Endpoint Tests
// ============================================

func TestAPI_AddToCart_AndGetCart(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"1","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	shop.bus.Wait()

	rec = shop.do(t, http.MethodGet, "/cart", "sess-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var c map[string]any
	decodeBody(t, rec, &c)
	items := c["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), c["item_count"])
	assert.Equal(t, "178", c["subtotal"])
}

func TestAPI_AddToCart_UnknownProduct(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"999"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_AddToCart_OutOfStock(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"5"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_UpdateCartItem(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"1","quantity":1}`).Code)
	shop.bus.Wait()

	rec := shop.do(t, http.MethodPatch, "/cart/items/1", "sess-1", `{"quantity":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	shop.bus.Wait()

	rec = shop.do(t, http.MethodGet, "/cart", "sess-1", "")
	var c map[string]any
	decodeBody(t, rec, &c)
	assert.Equal(t, float64(4), c["item_count"])
}

func TestAPI_RemoveCartItem(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"1"}`).Code)
	shop.bus.Wait()

	rec := shop.do(t, http.MethodDelete, "/cart/items/1", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	shop.bus.Wait()

	rec = shop.do(t, http.MethodGet, "/cart", "sess-1", "")
	var c map[string]any
	decodeBody(t, rec, &c)
	assert.Empty(t, c["items"])
}

func TestAPI_ClearCart(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"1"}`).Code)
	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"2"}`).Code)
	shop.bus.Wait()

	rec := shop.do(t, http.MethodDelete, "/cart", "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	shop.bus.Wait()

	rec = shop.do(t, http.MethodGet, "/cart", "sess-1", "")
	var c map[string]any
	decodeBody(t, rec, &c)
	assert.Equal(t, float64(0), c["item_count"])
}

func TestAPI_CartsAreIsolatedBySession(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"1"}`).Code)
	shop.bus.Wait()

	rec := shop.do(t, http.MethodGet, "/cart", "sess-2", "")
	var c map[string]any
	decodeBody(t, rec, &c)
	assert.Empty(t, c["items"])
}

// ============================================
// Quote Endpoint Tests
// ============================================

func TestAPI_GetCartQuote_PaidShipping(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"3"}`).Code)
	shop.bus.Wait()

	rec := shop.do(t, http.MethodGet, "/cart/quote", "sess-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var quote map[string]string
	decodeBody(t, rec, &quote)
	assert.Equal(t, "45", quote["subtotal"])
	assert.Equal(t, "15.99", quote["shipping"])
	assert.Equal(t, "7.93", quote["tax"])
	assert.Equal(t, "68.92", quote["total"])
}

func TestAPI_GetCartQuote_FreeShippingThreshold(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"4"}`).Code)
	shop.bus.Wait()

	rec := shop.do(t, http.MethodGet, "/cart/quote", "sess-1", "")

	var quote map[string]string
	decodeBody(t, rec, &quote)
	assert.Equal(t, "0", quote["shipping"])
	assert.Equal(t, "169.5", quote["total"])
}

func TestAPI_GetCartQuote_EmptyCart(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodGet, "/cart/quote", "sess-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var quote map[string]string
	decodeBody(t, rec, &quote)
	assert.Equal(t, "0", quote["subtotal"])
	assert.Equal(t, "0", quote["shipping"])
	assert.Equal(t, "0", quote["total"])
}

// ============================================
// Checkout Endpoint Tests
// ============================================

func TestAPI_Checkout_Success_SettlesOrder(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"3"}`).Code)
	shop.bus.Wait()

	rec := shop.do(t, http.MethodPost, "/checkout", "sess-1", checkoutForm)

	require.Equal(t, http.StatusCreated, rec.Code)
	var placed map[string]any
	decodeBody(t, rec, &placed)
	orderID := placed["id"].(string)
	assert.Equal(t, "processing", placed["status"])

	// Let the payment simulator and projections settle
	shop.bus.Wait()
	shop.bus.Wait()

	rec = shop.do(t, http.MethodGet, "/orders/"+orderID, "sess-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var o map[string]any
	decodeBody(t, rec, &o)
	assert.Equal(t, "confirmed", o["status"])
	assert.Equal(t, "68.92", o["total"])

	// Cart cleared after settlement
	rec = shop.do(t, http.MethodGet, "/cart", "sess-1", "")
	var c map[string]any
	decodeBody(t, rec, &c)
	assert.Equal(t, float64(0), c["item_count"])
}

func TestAPI_Checkout_InvalidForm(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"1"}`).Code)
	shop.bus.Wait()

	rec := shop.do(t, http.MethodPost, "/checkout", "sess-1", `{"email":"jamie@example.com"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Phone number is required", resp.Fields["phone"])
	assert.Equal(t, "You must accept the terms and conditions", resp.Fields["termsAccepted"])
	assert.NotContains(t, resp.Fields, "email")
}

func TestAPI_Checkout_EmptyCart(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodPost, "/checkout", "sess-1", checkoutForm)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================
// Order Endpoint Tests
// ============================================

func TestAPI_GetOrder_NotFound(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodGet, "/orders/nope", "sess-1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_GetOrder_OtherSessionHidden(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"3"}`).Code)
	shop.bus.Wait()
	rec := shop.do(t, http.MethodPost, "/checkout", "sess-1", checkoutForm)
	require.Equal(t, http.StatusCreated, rec.Code)
	var placed map[string]any
	decodeBody(t, rec, &placed)
	shop.bus.Wait()
	shop.bus.Wait()

	rec = shop.do(t, http.MethodGet, "/orders/"+placed["id"].(string), "sess-2", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_GetOrders_ListsSessionOrders(t *testing.T) {
	shop := newTestShop(t)

	require.Equal(t, http.StatusOK, shop.do(t, http.MethodPost, "/cart/items", "sess-1", `{"product_id":"3"}`).Code)
	shop.bus.Wait()
	require.Equal(t, http.StatusCreated, shop.do(t, http.MethodPost, "/checkout", "sess-1", checkoutForm).Code)
	shop.bus.Wait()
	shop.bus.Wait()

	rec := shop.do(t, http.MethodGet, "/orders", "sess-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]any
	decodeBody(t, rec, &orders)
	assert.Len(t, orders, 1)
}

// ============================================
// Method and Session Tests
// ============================================

func TestAPI_MethodNotAllowed(t *testing.T) {
	shop := newTestShop(t)

	rec := shop.do(t, http.MethodDelete, "/products", "sess-1", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAPI_SessionMiddleware_SetsCookie(t *testing.T) {
	bus := store.NewLocalBus()
	eventStore := store.NewEventStore(bus)
	readStore := store.NewReadStore()
	cat := catalog.MustLoad()
	projector := projection.NewProjector(readStore)
	projector.SeedProducts(cat)

	pricer := pricing.NewEngine(pricing.DefaultConfig())
	cmdHandler := command.NewHandler(cat, cart.NewService(eventStore), order.NewService(eventStore), pricer, notification.NopNotifier{})
	handlers := NewHandlers(cmdHandler, query.NewHandler(readStore), pricer)

	jwtService := session.NewJWTService("test-secret", 30*24*time.Hour)
	router := NewRouter(handlers, jwtService, "")

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cart_session", cookies[0].Name)
}
