package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
)

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient("")
	require.Error(t, err)

	_, err = NewHTTPClient("   ")
	require.Error(t, err)

	client, err := NewHTTPClient("http://catalogue.local/")
	require.NoError(t, err)
	assert.Equal(t, "http://catalogue.local", client.baseURL)
}

func TestHTTPClientOptions(t *testing.T) {
	custom := &http.Client{Timeout: time.Second}
	client, err := NewHTTPClient("http://catalogue.local", WithHTTPClient(custom), WithTimeout(2*time.Second))
	require.NoError(t, err)
	assert.Same(t, custom, client.httpClient)
	assert.Equal(t, 2*time.Second, client.httpClient.Timeout)
}

func TestGetProductSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/product/ABC-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sku":"ABC-1","name":"Widget","price":"12.50","instock":4}`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	product, err := client.GetProduct(context.Background(), "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", product.SKU)
	assert.Equal(t, "Widget", product.Name)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("12.50")), "price %s", product.Price)
	assert.Equal(t, 4, product.InStock)
	assert.True(t, product.Available())
}

func TestGetProductNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such product", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	_, err = client.GetProduct(context.Background(), "nope")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeProductNotFound, typed.Code())
}

func TestGetProductUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	_, err = client.GetProduct(context.Background(), "ABC-1")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code(), "5xx must not look like not-found")
}

func TestGetProductTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // connection refused from here on

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	_, err = client.GetProduct(context.Background(), "ABC-1")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestGetProductBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sku":`))
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL)
	require.NoError(t, err)

	_, err = client.GetProduct(context.Background(), "ABC-1")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestGetProductEmptySKU(t *testing.T) {
	client, err := NewHTTPClient("http://catalogue.local")
	require.NoError(t, err)

	_, err = client.GetProduct(context.Background(), "  ")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
