package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the persisted per-customer document: line items plus derived
// total/tax and an optional shipping record. It is stored whole as one JSON
// value per cart key; Version counts persists and is informational only
// (concurrent writers race, last write wins).
type Cart struct {
	ID        string          `json:"id"`
	Items     []LineItem      `json:"items"`
	Shipping  *ShippingInfo   `json:"shipping,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Tax       decimal.Decimal `json:"tax"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LineItem is one SKU's quantity within a cart. Name and price are snapshots
// taken from the catalogue at first add and never re-fetched; subtotal is
// always re-derived as price * qty.
type LineItem struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Qty      int             `json:"qty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ShippingInfo is tracked as a dedicated cart field rather than a synthetic
// line item; its cost folds into the cart total.
type ShippingInfo struct {
	Distance decimal.Decimal `json:"distance"`
	Cost     decimal.Decimal `json:"cost"`
	Location string          `json:"location"`
}

// NewCart returns an empty cart for the given id. An empty cart is a valid,
// persisted state distinct from an absent one.
func NewCart(id string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        id,
		Items:     []LineItem{},
		Total:     decimal.Zero,
		Tax:       decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) itemIndex(sku string) int {
	for i := range c.Items {
		if c.Items[i].SKU == sku {
			return i
		}
	}
	return -1
}
