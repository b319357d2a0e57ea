package catalog_test

import (
	"testing"
	"testing/fstest"

	"github.com/nikolayk812/cartsync/internal/catalog"
	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"data/products.json": &fstest.MapFile{Data: []byte(`{
			"products": [
				{"id": 1, "name": "Leather wallet", "price": 49.99, "image": "img/wallet.jpg", "category": "accessories"},
				{"id": "sku-2", "name": "Canvas bag", "price": "15.50", "image": "img/bag.jpg"}
			]
		}`)},
	}

	c, err := catalog.Load(fsys, "data/products.json")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	wallet, err := c.Product(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Leather wallet", wallet.Name)
	assert.True(t, decimal.RequireFromString("49.99").Equal(wallet.Price))
	assert.Equal(t, "img/wallet.jpg", wallet.ImageRef)

	bag, err := c.Product(t.Context(), "sku-2")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15.5").Equal(bag.Price))
}

func TestProductNotFound(t *testing.T) {
	c, err := catalog.New()
	require.NoError(t, err)

	_, err = c.Product(t.Context(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, domain.CodeService, domain.CodeOf(err))
}

func TestNewRejectsInvalidProducts(t *testing.T) {
	_, err := catalog.New(domain.Product{Name: "no id"})
	require.Error(t, err)

	_, err = catalog.New(domain.Product{ID: "p", Price: decimal.NewFromInt(-1)})
	require.EqualError(t, err, "product[p] has negative price")
}

func TestLoadErrors(t *testing.T) {
	fsys := fstest.MapFS{"bad.json": &fstest.MapFile{Data: []byte(`{"products": [`)}}

	_, err := catalog.Load(fsys, "bad.json")
	require.ErrorContains(t, err, "json.Unmarshal")

	_, err = catalog.Load(fsys, "missing.json")
	require.ErrorContains(t, err, "fs.ReadFile")
}
