package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:catalog_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS products (
  sku TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL DEFAULT 0,
  instock INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM products`).Error)

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku, name, price string, inStock int) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO products (sku, name, price, instock) VALUES (?, ?, ?, ?)`,
		sku, name, price, inStock,
	).Error)
}

func TestRepositoryGetProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedProduct(t, db, "ABC-1", "Widget", "12.50", 4)

	repo := NewRepository(db)

	product, err := repo.GetProduct(context.Background(), "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", product.SKU)
	assert.Equal(t, "Widget", product.Name)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("12.50")), "price %s", product.Price)
	assert.Equal(t, 4, product.InStock)
}

func TestRepositoryGetProductNotFound(t *testing.T) {
	db := setupCatalogTestDB(t)

	repo := NewRepository(db)

	_, err := repo.GetProduct(context.Background(), "ghost")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeProductNotFound, typed.Code())
}

func TestRepositoryGetProductEmptySKU(t *testing.T) {
	db := setupCatalogTestDB(t)

	repo := NewRepository(db)

	_, err := repo.GetProduct(context.Background(), "")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRepositoryNotConfigured(t *testing.T) {
	repo := NewRepository(nil)

	_, err := repo.GetProduct(context.Background(), "ABC-1")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestProductAvailability(t *testing.T) {
	p := Product{SKU: "A", InStock: 1}
	assert.True(t, p.Available())

	p.InStock = 0
	assert.False(t, p.Available())

	p.InStock = -3
	assert.False(t, p.Available())
}
