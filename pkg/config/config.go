package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverMemory = "memory"
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
)

type Config struct {
	App     AppConfig
	Store   StoreConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Pricing PricingConfig
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
	Env       string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port      string `envconfig:"STOREFRONT_PORT" default:"8080"`
	LogLevel  string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	SeedData  bool   `envconfig:"STOREFRONT_SEED_DATA" default:"true"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects the persistence drivers. The catalog (products, coupons,
// orders) and the cart sessions are chosen independently.
type StoreConfig struct {
	CatalogDriver string `envconfig:"STOREFRONT_CATALOG_DRIVER" default:"memory"`
	CartDriver    string `envconfig:"STOREFRONT_CART_DRIVER" default:"memory"`
}

type MongoConfig struct {
	URI            string        `envconfig:"STOREFRONT_MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"STOREFRONT_MONGO_DB" default:"storefront"`
	ConnectTimeout time.Duration `envconfig:"STOREFRONT_MONGO_CONNECT_TIMEOUT" default:"10s"`
	Transactions   bool          `envconfig:"STOREFRONT_MONGO_TRANSACTIONS" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" default:"redis://localhost:6379/0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
	CartTTL      time.Duration `envconfig:"STOREFRONT_REDIS_CART_TTL" default:"168h"`
}

type PricingConfig struct {
	// PercentageCouponMinTotal is the smallest pre-coupon total a percentage coupon may be applied to.
	PercentageCouponMinTotal int64 `envconfig:"STOREFRONT_PERCENTAGE_COUPON_MIN_TOTAL" default:"10000"`
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Store.CatalogDriver) {
	case DriverMemory, DriverMongo:
	default:
		return fmt.Errorf("unsupported catalog driver %q", c.Store.CatalogDriver)
	}
	switch strings.ToLower(c.Store.CartDriver) {
	case DriverMemory, DriverMongo, DriverRedis:
	default:
		return fmt.Errorf("unsupported cart driver %q", c.Store.CartDriver)
	}
	if c.Pricing.PercentageCouponMinTotal < 0 {
		return fmt.Errorf("percentage coupon threshold must not be negative")
	}
	return nil
}

// UsesMongo reports whether any driver needs a MongoDB connection.
func (c *Config) UsesMongo() bool {
	return strings.EqualFold(c.Store.CatalogDriver, DriverMongo) || strings.EqualFold(c.Store.CartDriver, DriverMongo)
}
