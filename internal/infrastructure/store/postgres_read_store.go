package store

import (
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/example/giftbox-shop/internal/readmodel"
)

// PostgresReadStore implements ReadStoreInterface using PostgreSQL
type PostgresReadStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

// Set stores a read model
func (rs *PostgresReadStore) Set(collection, id string, data any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch collection {
	case "products":
		rs.setProduct(id, data.(*readmodel.ProductReadModel))
	case "carts":
		rs.setCart(id, data.(*readmodel.CartReadModel))
	case "orders":
		rs.setOrder(id, data.(*readmodel.OrderReadModel))
	}
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(collection, id string) (any, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	switch collection {
	case "products":
		return rs.getProduct(id)
	case "carts":
		return rs.getCart(id)
	case "orders":
		return rs.getOrder(id)
	}
	return nil, false
}

// GetAll retrieves all items in a collection
func (rs *PostgresReadStore) GetAll(collection string) []any {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	switch collection {
	case "products":
		return rs.getAllProducts()
	case "carts":
		return rs.getAllCarts()
	case "orders":
		return rs.getAllOrders()
	}
	return nil
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(collection, id string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var tableName string
	switch collection {
	case "products":
		tableName = "read_products"
	case "carts":
		tableName = "read_carts"
	case "orders":
		tableName = "read_orders"
	default:
		return
	}

	_, err := rs.db.Exec("DELETE FROM "+tableName+" WHERE id = $1", id)
	if err != nil {
		log.Printf("[PostgresReadStore] Error deleting from %s: %v", collection, err)
	}
}

// Update modifies a read model using an update function
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var current any
	var found bool

	switch collection {
	case "products":
		current, found = rs.getProductUnsafe(id)
	case "carts":
		current, found = rs.getCartUnsafe(id)
	case "orders":
		current, found = rs.getOrderUnsafe(id)
	}

	if !found {
		return false
	}

	updated := updateFn(current)

	switch collection {
	case "products":
		rs.setProductUnsafe(id, updated.(*readmodel.ProductReadModel))
	case "carts":
		rs.setCartUnsafe(id, updated.(*readmodel.CartReadModel))
	case "orders":
		rs.setOrderUnsafe(id, updated.(*readmodel.OrderReadModel))
	}

	return true
}

// Product operations
func (rs *PostgresReadStore) setProduct(id string, p *readmodel.ProductReadModel) {
	rs.setProductUnsafe(id, p)
}

func (rs *PostgresReadStore) setProductUnsafe(id string, p *readmodel.ProductReadModel) {
	_, err := rs.db.Exec(`
		INSERT INTO read_products (id, name, description, price, image, featured, in_stock, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			image = EXCLUDED.image,
			featured = EXCLUDED.featured,
			in_stock = EXCLUDED.in_stock,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Name, p.Description, p.Price, p.Image, p.Featured, p.InStock, p.SortOrder, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting product: %v", err)
	}
}

func (rs *PostgresReadStore) getProduct(id string) (any, bool) {
	return rs.getProductUnsafe(id)
}

func (rs *PostgresReadStore) getProductUnsafe(id string) (*readmodel.ProductReadModel, bool) {
	var p readmodel.ProductReadModel
	err := rs.db.QueryRow(`
		SELECT id, name, description, price, image, featured, in_stock, sort_order, created_at, updated_at
		FROM read_products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Featured, &p.InStock, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[PostgresReadStore] Error getting product: %v", err)
		}
		return nil, false
	}
	return &p, true
}

func (rs *PostgresReadStore) getAllProducts() []any {
	rows, err := rs.db.Query(`
		SELECT id, name, description, price, image, featured, in_stock, sort_order, created_at, updated_at
		FROM read_products ORDER BY sort_order ASC
	`)
	if err != nil {
		log.Printf("[PostgresReadStore] Error getting all products: %v", err)
		return nil
	}
	defer rows.Close()

	var products []any
	for rows.Next() {
		var p readmodel.ProductReadModel
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Featured, &p.InStock, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Error scanning product: %v", err)
			continue
		}
		products = append(products, &p)
	}
	return products
}

// Cart operations
func (rs *PostgresReadStore) setCart(id string, c *readmodel.CartReadModel) {
	rs.setCartUnsafe(id, c)
}

func (rs *PostgresReadStore) setCartUnsafe(id string, c *readmodel.CartReadModel) {
	itemsJSON, _ := json.Marshal(c.Items)
	_, err := rs.db.Exec(`
		INSERT INTO read_carts (id, session_id, items, subtotal, item_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			items = EXCLUDED.items,
			subtotal = EXCLUDED.subtotal,
			item_count = EXCLUDED.item_count,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.SessionID, itemsJSON, c.Subtotal, c.ItemCount, time.Now())
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting cart: %v", err)
	}
}

func (rs *PostgresReadStore) getCart(id string) (any, bool) {
	return rs.getCartUnsafe(id)
}

func (rs *PostgresReadStore) getCartUnsafe(id string) (*readmodel.CartReadModel, bool) {
	var c readmodel.CartReadModel
	var itemsJSON []byte
	err := rs.db.QueryRow(`
		SELECT id, session_id, items, subtotal, item_count, updated_at
		FROM read_carts WHERE id = $1
	`, id).Scan(&c.ID, &c.SessionID, &itemsJSON, &c.Subtotal, &c.ItemCount, &c.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[PostgresReadStore] Error getting cart: %v", err)
		}
		return nil, false
	}
	json.Unmarshal(itemsJSON, &c.Items)
	return &c, true
}

func (rs *PostgresReadStore) getAllCarts() []any {
	rows, err := rs.db.Query(`SELECT id, session_id, items, subtotal, item_count, updated_at FROM read_carts`)
	if err != nil {
		log.Printf("[PostgresReadStore] Error getting all carts: %v", err)
		return nil
	}
	defer rows.Close()

	var carts []any
	for rows.Next() {
		var c readmodel.CartReadModel
		var itemsJSON []byte
		if err := rows.Scan(&c.ID, &c.SessionID, &itemsJSON, &c.Subtotal, &c.ItemCount, &c.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Error scanning cart: %v", err)
			continue
		}
		json.Unmarshal(itemsJSON, &c.Items)
		carts = append(carts, &c)
	}
	return carts
}

// Order operations
func (rs *PostgresReadStore) setOrder(id string, o *readmodel.OrderReadModel) {
	rs.setOrderUnsafe(id, o)
}

func (rs *PostgresReadStore) setOrderUnsafe(id string, o *readmodel.OrderReadModel) {
	itemsJSON, _ := json.Marshal(o.Items)
	_, err := rs.db.Exec(`
		INSERT INTO read_orders (id, session_id, email, items, subtotal, shipping, tax, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			items = EXCLUDED.items,
			subtotal = EXCLUDED.subtotal,
			shipping = EXCLUDED.shipping,
			tax = EXCLUDED.tax,
			total = EXCLUDED.total,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`, o.ID, o.SessionID, o.Email, itemsJSON, o.Subtotal, o.Shipping, o.Tax, o.Total, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting order: %v", err)
	}
}

func (rs *PostgresReadStore) getOrder(id string) (any, bool) {
	return rs.getOrderUnsafe(id)
}

func (rs *PostgresReadStore) getOrderUnsafe(id string) (*readmodel.OrderReadModel, bool) {
	var o readmodel.OrderReadModel
	var itemsJSON []byte
	err := rs.db.QueryRow(`
		SELECT id, session_id, email, items, subtotal, shipping, tax, total, status, created_at, updated_at
		FROM read_orders WHERE id = $1
	`, id).Scan(&o.ID, &o.SessionID, &o.Email, &itemsJSON, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[PostgresReadStore] Error getting order: %v", err)
		}
		return nil, false
	}
	json.Unmarshal(itemsJSON, &o.Items)
	return &o, true
}

func (rs *PostgresReadStore) getAllOrders() []any {
	rows, err := rs.db.Query(`
		SELECT id, session_id, email, items, subtotal, shipping, tax, total, status, created_at, updated_at
		FROM read_orders ORDER BY created_at DESC
	`)
	if err != nil {
		log.Printf("[PostgresReadStore] Error getting all orders: %v", err)
		return nil
	}
	defer rows.Close()

	var orders []any
	for rows.Next() {
		var o readmodel.OrderReadModel
		var itemsJSON []byte
		if err := rows.Scan(&o.ID, &o.SessionID, &o.Email, &itemsJSON, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Error scanning order: %v", err)
			continue
		}
		json.Unmarshal(itemsJSON, &o.Items)
		orders = append(orders, &o)
	}
	return orders
}

// GetOrdersBySession returns all orders placed under a session, newest first
func (rs *PostgresReadStore) GetOrdersBySession(sessionID string) []*readmodel.OrderReadModel {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	rows, err := rs.db.Query(`
		SELECT id, session_id, email, items, subtotal, shipping, tax, total, status, created_at, updated_at
		FROM read_orders WHERE session_id = $1 ORDER BY created_at DESC
	`, sessionID)
	if err != nil {
		log.Printf("[PostgresReadStore] Error getting orders by session: %v", err)
		return nil
	}
	defer rows.Close()

	var orders []*readmodel.OrderReadModel
	for rows.Next() {
		var o readmodel.OrderReadModel
		var itemsJSON []byte
		if err := rows.Scan(&o.ID, &o.SessionID, &o.Email, &itemsJSON, &o.Subtotal, &o.Shipping, &o.Tax, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Error scanning order: %v", err)
			continue
		}
		json.Unmarshal(itemsJSON, &o.Items)
		orders = append(orders, &o)
	}
	return orders
}
