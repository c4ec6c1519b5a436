package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedCatalog(t *testing.T) {
	c, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())
}

func TestCatalog_ProductsInDisplayOrder(t *testing.T) {
	c := MustLoad()

	products := c.Products()
	require.Len(t, products, 6)

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids)
}

func TestCatalog_Get(t *testing.T) {
	c := MustLoad()

	p, err := c.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "Elegant Rose Gold Collection", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("89.00")))
	assert.True(t, p.InStock)
	assert.NotEmpty(t, p.Image())
}

func TestCatalog_Get_NotFound(t *testing.T) {
	c := MustLoad()

	_, err := c.Get("999")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalog_DesignerBoxOutOfStock(t *testing.T) {
	c := MustLoad()

	p, err := c.Get("5")
	require.NoError(t, err)
	assert.Equal(t, "Designer Premium Box", p.Name)
	assert.False(t, p.InStock)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("175.00")))
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	data := []byte(`[{"id":"1","name":"A","price":"10.00"},{"id":"1","name":"B","price":"20.00"}]`)

	_, err := parse(data)
	assert.Error(t, err)
}

func TestParse_RejectsMissingID(t *testing.T) {
	data := []byte(`[{"name":"A","price":"10.00"}]`)

	_, err := parse(data)
	assert.Error(t, err)
}
