package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "CARTKEEPER"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "CARTKEEPER_APP_ENV"
	EnvPort     = "CARTKEEPER_APP_PORT"
	EnvRedisURL = "CARTKEEPER_REDIS_URL"
)

// Shipping accumulation policies accepted by the cart engine.
const (
	ShippingPolicyAccumulate = "accumulate"
	ShippingPolicyReplace    = "replace"
)

// Catalog provider kinds.
const (
	CatalogSourceHTTP = "http"
	CatalogSourceDB   = "db"
)

type Config struct {
	App       AppConfig
	Redis     RedisConfig
	DB        DBConfig
	Cart      CartConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Catalog.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTKEEPER_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTKEEPER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTKEEPER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTKEEPER_LOG_WARN_STACK" default:"false"`

	ShutdownGrace time.Duration `envconfig:"CARTKEEPER_APP_SHUTDOWN_GRACE" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTKEEPER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARTKEEPER_REDIS_ADDR"`
	Password     string        `envconfig:"CARTKEEPER_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTKEEPER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTKEEPER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTKEEPER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTKEEPER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTKEEPER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTKEEPER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// DBConfig points at the product catalogue database. Only required when the
// catalogue source is "db".
type DBConfig struct {
	DSN    string `envconfig:"CARTKEEPER_DB_DSN"`
	Driver string `envconfig:"CARTKEEPER_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"CARTKEEPER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTKEEPER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTKEEPER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTKEEPER_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"CARTKEEPER_DB_AUTO_MIGRATE" default:"false"`
}

// CartConfig carries the deployment constants of the mutation engine.
type CartConfig struct {
	// TaxRate is the flat tax multiplier applied to the cart total, e.g. "0.10".
	TaxRate string `envconfig:"CARTKEEPER_CART_TAX_RATE" default:"0.10"`
	// ShippingPolicy selects how repeated shipping submissions combine:
	// "accumulate" adds cost/distance into the existing record, "replace"
	// swaps the record wholesale.
	ShippingPolicy string `envconfig:"CARTKEEPER_CART_SHIPPING_POLICY" default:"accumulate"`
}

// TaxRateDecimal parses the configured tax rate. validate() guarantees it parses.
func (c CartConfig) TaxRateDecimal() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.TaxRate)
	return rate
}

func (c CartConfig) validate() error {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return fmt.Errorf("invalid cart tax rate %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("cart tax rate must not be negative, got %s", rate)
	}
	switch c.ShippingPolicy {
	case ShippingPolicyAccumulate, ShippingPolicyReplace:
		return nil
	default:
		return fmt.Errorf("invalid shipping policy %q (want %q or %q)",
			c.ShippingPolicy, ShippingPolicyAccumulate, ShippingPolicyReplace)
	}
}

// CatalogConfig selects and configures the product catalogue collaborator.
type CatalogConfig struct {
	Source  string        `envconfig:"CARTKEEPER_CATALOG_SOURCE" default:"http"`
	BaseURL string        `envconfig:"CARTKEEPER_CATALOG_BASE_URL"`
	Timeout time.Duration `envconfig:"CARTKEEPER_CATALOG_TIMEOUT" default:"5s"`
}

func (c CatalogConfig) validate() error {
	switch c.Source {
	case CatalogSourceHTTP:
		if strings.TrimSpace(c.BaseURL) == "" {
			return fmt.Errorf("catalog base url is required when source is %q", CatalogSourceHTTP)
		}
		return nil
	case CatalogSourceDB:
		return nil
	default:
		return fmt.Errorf("invalid catalog source %q (want %q or %q)",
			c.Source, CatalogSourceHTTP, CatalogSourceDB)
	}
}

// RateLimitConfig bounds how fast a single client may hit mutation routes.
type RateLimitConfig struct {
	Enabled bool          `envconfig:"CARTKEEPER_RATE_LIMIT_ENABLED" default:"true"`
	Window  time.Duration `envconfig:"CARTKEEPER_RATE_LIMIT_WINDOW" default:"1m"`
	Limit   int           `envconfig:"CARTKEEPER_RATE_LIMIT_PER_WINDOW" default:"600"`
}
