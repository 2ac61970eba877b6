package config

import (
	"os"
	"testing"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if got := cfg.Cart.TaxRateDecimal().String(); got != "0.1" {
		t.Fatalf("expected default tax rate 0.1, got %s", got)
	}

	if cfg.Cart.ShippingPolicy != ShippingPolicyAccumulate {
		t.Fatalf("expected default shipping policy accumulate, got %q", cfg.Cart.ShippingPolicy)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_BadTaxRate(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("CARTKEEPER_CART_TAX_RATE", "ten percent")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid tax rate to return an error")
	}
}

func TestLoad_BadShippingPolicy(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("CARTKEEPER_CART_SHIPPING_POLICY", "merge")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid shipping policy to return an error")
	}
}

func TestLoad_HTTPCatalogRequiresBaseURL(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("CARTKEEPER_CATALOG_BASE_URL"); err != nil {
		t.Fatalf("failed to unset catalog base url: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected http catalog without base url to return an error")
	}
}

func TestLoad_DBCatalogSkipsBaseURL(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("CARTKEEPER_CATALOG_BASE_URL"); err != nil {
		t.Fatalf("failed to unset catalog base url: %v", err)
	}
	t.Setenv("CARTKEEPER_CATALOG_SOURCE", CatalogSourceDB)

	if _, err := Load(); err != nil {
		t.Fatalf("db catalog should not require a base url: %v", err)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv("CARTKEEPER_CATALOG_BASE_URL", "http://catalogue.internal:8082")
}
