package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Store is the key-value surface the repository consumes; pkg/redis.Client
// satisfies it, tests provide a map-backed stub.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	CartKey(cartID string) string
}

// Repository persists cart documents whole: one JSON value per cart key,
// no locking. Concurrent writers to the same cart race read-read-write-write
// and the last completed Save wins.
type Repository interface {
	Load(ctx context.Context, cartID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, cartID string) (bool, error)
}

type redisRepository struct {
	store Store
}

// NewRepository builds a redis-backed cart repository.
func NewRepository(store Store) Repository {
	return &redisRepository{store: store}
}

func (r *redisRepository) Load(ctx context.Context, cartID string) (*Cart, error) {
	raw, err := r.store.Get(ctx, r.store.CartKey(cartID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart "+cartID+" not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart "+cartID)
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		// A prior write stored something this version cannot decode. Loud
		// failure beats silently resetting the customer's cart.
		return nil, pkgerrors.Wrap(pkgerrors.CodeCorruptData, err, "decoding cart "+cartID)
	}
	if c.ID == "" {
		c.ID = cartID
	}
	return &c, nil
}

func (r *redisRepository) Save(ctx context.Context, c *Cart) error {
	c.Version++
	c.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart "+c.ID)
	}
	if err := r.store.Set(ctx, r.store.CartKey(c.ID), string(raw), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing cart "+c.ID)
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, cartID string) (bool, error) {
	removed, err := r.store.Del(ctx, r.store.CartKey(cartID))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting cart "+cartID)
	}
	return removed > 0, nil
}
