package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the read-only catalogue entry. It is never persisted by this
// service; name and price are snapshotted into a cart line at add time.
type Product struct {
	SKU     string          `json:"sku"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	InStock int             `json:"instock"`
}

// Provider resolves products by SKU. Implementations: the catalogue HTTP API
// client, or a direct read of the products database for colocated deployments.
type Provider interface {
	GetProduct(ctx context.Context, sku string) (*Product, error)
}

// Available reports whether the product can be added to a cart; a zero stock
// level means the catalogue considers it unavailable.
func (p *Product) Available() bool {
	return p != nil && p.InStock > 0
}
