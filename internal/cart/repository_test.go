package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func TestRepositoryLoadMissingCart(t *testing.T) {
	repo := NewRepository(newMemStore())

	_, err := repo.Load(context.Background(), "nope")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCartNotFound {
		t.Fatalf("expected cart not found, got %v", err)
	}
}

func TestRepositoryLoadCorruptDocument(t *testing.T) {
	store := newMemStore()
	store.data[store.CartKey("c1")] = "{not json"
	repo := NewRepository(store)

	_, err := repo.Load(context.Background(), "c1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCorruptData {
		t.Fatalf("expected corrupt data, got %v", err)
	}
}

func TestRepositorySaveLoadRoundTrip(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store)

	c := NewCart("c1")
	c.Items = append(c.Items, LineItem{
		SKU:      "X",
		Name:     "Widget",
		Price:    decimal.NewFromInt(10),
		Qty:      2,
		Subtotal: decimal.NewFromInt(20),
	})
	c.Total = decimal.NewFromInt(20)
	c.Tax = decimal.NewFromInt(2)

	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if c.Version != 1 {
		t.Fatalf("expected version bump on save, got %d", c.Version)
	}

	loaded, err := repo.Load(context.Background(), "c1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Items) != 1 || loaded.Items[0].SKU != "X" || loaded.Items[0].Qty != 2 {
		t.Fatalf("unexpected items after round trip: %+v", loaded.Items)
	}
	if !loaded.Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected total 20, got %s", loaded.Total)
	}
	if !loaded.Items[0].Price.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected price 10, got %s", loaded.Items[0].Price)
	}
}

func TestRepositoryDeleteReportsExistence(t *testing.T) {
	store := newMemStore()
	repo := NewRepository(store)

	if err := repo.Save(context.Background(), NewCart("c1")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	existed, err := repo.Delete(context.Background(), "c1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !existed {
		t.Fatalf("expected delete to observe the cart")
	}

	existed, err = repo.Delete(context.Background(), "c1")
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if existed {
		t.Fatalf("second delete should observe no cart")
	}
}

func TestRepositoryStoreFailuresMapToDependency(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	repo := NewRepository(store)

	_, err := repo.Load(context.Background(), "c1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error on load, got %v", err)
	}

	if err := repo.Save(context.Background(), NewCart("c1")); err == nil {
		t.Fatal("expected save to fail")
	}

	if _, err := repo.Delete(context.Background(), "c1"); err == nil {
		t.Fatal("expected delete to fail")
	}
}

// memStore is a map-backed stand-in for the redis client.
type memStore struct {
	data   map[string]string
	err    error
	writes int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.data[key] = value.(string)
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			removed++
		}
		delete(m.data, key)
	}
	return removed, nil
}

func (m *memStore) CartKey(cartID string) string {
	return "ck:cart:" + cartID
}
