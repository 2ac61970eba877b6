package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/marcoguerrero/cartkeeper/internal/catalog"
	"github.com/marcoguerrero/cartkeeper/pkg/config"
	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
	"github.com/marcoguerrero/cartkeeper/pkg/metrics"
	"github.com/shopspring/decimal"
)

// ShippingInput carries a shipping submission. Fields are pointers so the
// engine can tell absent from zero: a free delivery (cost 0) or a zero
// distance is valid input, a missing field is not.
type ShippingInput struct {
	Distance *decimal.Decimal
	Cost     *decimal.Decimal
	Location *string
}

// Service is the cart mutation engine. Every mutating operation is a
// non-transactional read-modify-write against the cart document; concurrent
// requests for the same cart race and the last write wins. The persist is
// always the final step, so a failed operation never leaves partial state.
type Service interface {
	Get(ctx context.Context, cartID string) (*Cart, error)
	Delete(ctx context.Context, cartID string) (bool, error)
	Rename(ctx context.Context, fromID, toID string) (*Cart, error)
	AddItem(ctx context.Context, cartID, sku string, qty int) (*Cart, error)
	UpdateItem(ctx context.Context, cartID, sku string, qty int) (*Cart, error)
	AddShipping(ctx context.Context, cartID string, input ShippingInput) (*Cart, error)
}

type service struct {
	repo           Repository
	catalogue      catalog.Provider
	taxRate        decimal.Decimal
	shippingPolicy string
	metrics        *metrics.CartMetrics
}

// NewService builds the engine with its collaborators and deployment constants.
func NewService(repo Repository, catalogue catalog.Provider, cfg config.CartConfig, cartMetrics *metrics.CartMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogue == nil {
		return nil, fmt.Errorf("catalogue provider required")
	}
	rate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate %q: %w", cfg.TaxRate, err)
	}
	policy := cfg.ShippingPolicy
	if policy == "" {
		policy = config.ShippingPolicyAccumulate
	}
	if policy != config.ShippingPolicyAccumulate && policy != config.ShippingPolicyReplace {
		return nil, fmt.Errorf("invalid shipping policy %q", policy)
	}
	return &service{
		repo:           repo,
		catalogue:      catalogue,
		taxRate:        rate,
		shippingPolicy: policy,
		metrics:        cartMetrics,
	}, nil
}

func (s *service) Get(ctx context.Context, cartID string) (*Cart, error) {
	return s.repo.Load(ctx, cartID)
}

// Delete removes the cart and reports whether one existed. Deleting an absent
// cart is not an error; the facade maps existed=false to a not-found response.
func (s *service) Delete(ctx context.Context, cartID string) (existed bool, err error) {
	defer s.observe("delete", time.Now(), &err)
	return s.repo.Delete(ctx, cartID)
}

// Rename moves the cart: the document is copied to the destination key
// (overwriting anything there, last write wins) and the source key is deleted.
// Copy-without-delete would leave an orphan cart behind an abandoned id.
func (s *service) Rename(ctx context.Context, fromID, toID string) (c *Cart, err error) {
	defer s.observe("rename", time.Now(), &err)

	c, err = s.repo.Load(ctx, fromID)
	if err != nil {
		return nil, err
	}

	c.ID = toID
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	if _, err := s.repo.Delete(ctx, fromID); err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem resolves the SKU against the catalogue, then merges it into the
// cart: an existing line gets its quantity bumped and its subtotal re-derived
// from the price pinned at first add; a new line is appended with the
// catalogue snapshot. Add is upsert-creating: an absent cart is initialized
// empty first.
func (s *service) AddItem(ctx context.Context, cartID, sku string, qty int) (c *Cart, err error) {
	defer s.observe("add", time.Now(), &err)

	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("qty must be a positive integer, got %d", qty))
	}

	// Catalogue first: nothing is written until the product is confirmed.
	product, err := s.catalogue.GetProduct(ctx, sku)
	if err != nil {
		return nil, err
	}
	if !product.Available() {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "product "+sku+" is out of stock")
	}

	c, err = s.repo.Load(ctx, cartID)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			return nil, err
		}
		c = NewCart(cartID)
	}

	if i := c.itemIndex(sku); i >= 0 {
		c.Items[i].Qty += qty
	} else {
		c.Items = append(c.Items, LineItem{
			SKU:   product.SKU,
			Name:  product.Name,
			Price: product.Price,
			Qty:   qty,
		})
	}

	recomputeTotals(c, s.taxRate)

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.metrics.AddItems(int64(qty))
	return c, nil
}

// UpdateItem sets the quantity of an existing line. qty 0 removes the line
// entirely; this is the engine's only removal path. The pinned price is never
// changed here, only AddItem establishes price.
func (s *service) UpdateItem(ctx context.Context, cartID, sku string, qty int) (c *Cart, err error) {
	defer s.observe("update", time.Now(), &err)

	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("qty must not be negative, got %d", qty))
	}

	c, err = s.repo.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	i := c.itemIndex(sku)
	if i < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeItemNotFound, "item "+sku+" not in cart "+cartID)
	}

	if qty == 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Qty = qty
	}

	recomputeTotals(c, s.taxRate)

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddShipping attaches or combines a shipping record. All three fields must
// be present; zero cost or distance is legitimate input. Under the
// accumulate policy repeated submissions add cost and distance into the
// existing record (multi-leg delivery) and keep the latest location; under
// the replace policy the record is swapped wholesale.
func (s *service) AddShipping(ctx context.Context, cartID string, input ShippingInput) (c *Cart, err error) {
	defer s.observe("shipping", time.Now(), &err)

	missing := []string{}
	if input.Distance == nil {
		missing = append(missing, "distance")
	}
	if input.Cost == nil {
		missing = append(missing, "cost")
	}
	if input.Location == nil {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping fields missing").
			WithDetails(map[string]any{"missing": missing})
	}

	c, err = s.repo.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	switch {
	case c.Shipping == nil || s.shippingPolicy == config.ShippingPolicyReplace:
		c.Shipping = &ShippingInfo{
			Distance: *input.Distance,
			Cost:     *input.Cost,
			Location: *input.Location,
		}
	default:
		c.Shipping.Distance = c.Shipping.Distance.Add(*input.Distance)
		c.Shipping.Cost = c.Shipping.Cost.Add(*input.Cost)
		c.Shipping.Location = *input.Location
	}

	recomputeTotals(c, s.taxRate)

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) observe(op string, start time.Time, err *error) {
	s.metrics.ObserveDuration(op, time.Since(start))
	if err != nil && *err != nil {
		s.metrics.IncFailure(op)
		return
	}
	s.metrics.IncMutation(op)
}
