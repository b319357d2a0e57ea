package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/currency"
)

const EnvPrefix = "CARTSYNC"

const (
	GatewayEdge   = "edge"
	GatewayTable  = "table"
	GatewayMemory = "memory"

	LocalStoreSQLite = "sqlite"
	LocalStoreRedis  = "redis"
	LocalStoreMemory = "memory"
)

type Config struct {
	App        AppConfig
	Gateway    GatewayConfig
	DB         DBConfig
	LocalStore LocalStoreConfig
	Sync       SyncConfig
	Catalog    CatalogConfig
	Pricing    PricingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	LogLevel  string `envconfig:"CARTSYNC_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"CARTSYNC_LOG_FORMAT" default:"json"`
	// Profile names the browser-profile equivalent: one guest cart per profile.
	Profile      string `envconfig:"CARTSYNC_PROFILE" default:"default"`
	SessionToken string `envconfig:"CARTSYNC_SESSION_TOKEN"`
}

type GatewayConfig struct {
	Backend        string        `envconfig:"CARTSYNC_GATEWAY_BACKEND" default:"edge"`
	FunctionsURL   string        `envconfig:"CARTSYNC_GATEWAY_FUNCTIONS_URL"`
	AnonKey        string        `envconfig:"CARTSYNC_GATEWAY_ANON_KEY"`
	RequestTimeout time.Duration `envconfig:"CARTSYNC_GATEWAY_REQUEST_TIMEOUT" default:"30s"`
	RetryAttempts  uint64        `envconfig:"CARTSYNC_GATEWAY_RETRY_ATTEMPTS" default:"3"`
	RetryBackoff   time.Duration `envconfig:"CARTSYNC_GATEWAY_RETRY_BACKOFF" default:"200ms"`
}

type DBConfig struct {
	DSN string `envconfig:"CARTSYNC_DB_DSN"`
}

type LocalStoreConfig struct {
	Backend    string        `envconfig:"CARTSYNC_LOCAL_STORE_BACKEND" default:"sqlite"`
	SQLitePath string        `envconfig:"CARTSYNC_LOCAL_STORE_SQLITE_PATH" default:"cartsync.db"`
	RedisURL   string        `envconfig:"CARTSYNC_LOCAL_STORE_REDIS_URL"`
	RedisTTL   time.Duration `envconfig:"CARTSYNC_LOCAL_STORE_REDIS_TTL" default:"0"`
}

type SyncConfig struct {
	// RetainFailedLines keeps lines that failed to merge in the guest cart
	// instead of clearing it unconditionally.
	RetainFailedLines bool `envconfig:"CARTSYNC_SYNC_RETAIN_FAILED_LINES" default:"false"`
}

type CatalogConfig struct {
	ProductsFile string `envconfig:"CARTSYNC_CATALOG_PRODUCTS_FILE" default:"data/products.json"`
}

type PricingConfig struct {
	Currency string `envconfig:"CARTSYNC_PRICING_CURRENCY" default:"INR"`
}

// Unit parses the configured ISO currency code.
func (p PricingConfig) Unit() (currency.Unit, error) {
	unit, err := currency.ParseISO(p.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", p.Currency, err)
	}
	return unit, nil
}

func (c *Config) validate() error {
	c.Gateway.Backend = strings.ToLower(strings.TrimSpace(c.Gateway.Backend))
	switch c.Gateway.Backend {
	case GatewayEdge:
		if c.Gateway.FunctionsURL == "" {
			return fmt.Errorf("%s_GATEWAY_FUNCTIONS_URL is required for the edge gateway", EnvPrefix)
		}
	case GatewayTable:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s_DB_DSN is required for the table gateway", EnvPrefix)
		}
	case GatewayMemory:
	default:
		return fmt.Errorf("unknown gateway backend %q", c.Gateway.Backend)
	}

	c.LocalStore.Backend = strings.ToLower(strings.TrimSpace(c.LocalStore.Backend))
	switch c.LocalStore.Backend {
	case LocalStoreSQLite, LocalStoreMemory:
	case LocalStoreRedis:
		if c.LocalStore.RedisURL == "" {
			return fmt.Errorf("%s_LOCAL_STORE_REDIS_URL is required for the redis local store", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown local store backend %q", c.LocalStore.Backend)
	}

	if _, err := c.Pricing.Unit(); err != nil {
		return err
	}
	return nil
}
