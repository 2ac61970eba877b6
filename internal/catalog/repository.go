package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productRecord mirrors the products table owned by the catalogue service.
// This service only ever reads it.
type productRecord struct {
	SKU       string          `gorm:"column:sku;primaryKey"`
	Name      string          `gorm:"column:name"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	InStock   int             `gorm:"column:instock"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string {
	return "products"
}

// Repository resolves products straight from the catalogue database,
// for deployments colocated with it.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a database-backed catalogue provider.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetProduct looks the SKU up in the products table.
func (r *Repository) GetProduct(ctx context.Context, sku string) (*Product, error) {
	if r == nil || r.db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalogue database not configured")
	}
	trimmed := strings.TrimSpace(sku)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}

	var record productRecord
	err := r.db.WithContext(ctx).First(&record, "sku = ?", trimmed).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeProductNotFound, "product "+trimmed+" not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "querying product "+trimmed)
	}

	return &Product{
		SKU:     record.SKU,
		Name:    record.Name,
		Price:   record.Price,
		InStock: record.InStock,
	}, nil
}
