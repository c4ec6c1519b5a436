// Package catalog holds the immutable gift box product catalog. The
// shop sells a fixed assortment, so products ship embedded in the
// binary instead of living behind a write model.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	_ "embed"

	"github.com/shopspring/decimal"
)

//go:embed products.json
var productsJSON []byte

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Images        []string         `json:"images"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	InStock       bool             `json:"inStock"`
	Rating        float64          `json:"rating"`
	Featured      bool             `json:"featured"`
}

// Image returns the primary product image, or "" if none exists
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Catalog is a read-only product listing in display order
type Catalog struct {
	products []Product
	byID     map[string]int
}

// Load parses the embedded product data
func Load() (*Catalog, error) {
	return parse(productsJSON)
}

// MustLoad is Load for mains and tests where a broken embedded catalog
// is unrecoverable anyway.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func parse(data []byte) (*Catalog, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		byID[p.ID] = i
	}

	return &Catalog{products: products, byID: byID}, nil
}

// Products returns all products in display order
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get returns the product with the given id
func (c *Catalog) Get(id string) (Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// Len returns the number of products in the catalog
func (c *Catalog) Len() int {
	return len(c.products)
}
