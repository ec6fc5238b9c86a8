package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Mongo     MongoConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	Worker    WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"tavola-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// MongoConfig holds the document store settings.
type MongoConfig struct {
	URI            string        `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"MONGODB_DATABASE" default:"tavola"`
	ConnectTimeout time.Duration `envconfig:"MONGODB_CONNECT_TIMEOUT" default:"10s"`
}

// CacheConfig holds cache settings, including the per-class TTLs of the
// read model. The TTLs are tuning knobs, not invariants.
type CacheConfig struct {
	Type      string        `envconfig:"CACHE_TYPE" default:"redis"` // redis or memory
	KeyPrefix string        `envconfig:"CACHE_KEY_PREFIX" default:"tavola"`
	OpTimeout time.Duration `envconfig:"CACHE_OP_TIMEOUT" default:"500ms"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	ProductTTL     time.Duration `envconfig:"CACHE_PRODUCT_TTL" default:"10m"`
	ProductListTTL time.Duration `envconfig:"CACHE_PRODUCT_LIST_TTL" default:"5m"`
	CouponTTL      time.Duration `envconfig:"CACHE_COUPON_TTL" default:"10m"`
	CouponListTTL  time.Duration `envconfig:"CACHE_COUPON_LIST_TTL" default:"5m"`
	TodayStatsTTL  time.Duration `envconfig:"CACHE_TODAY_STATS_TTL" default:"2m"`
	WeeklyChartTTL time.Duration `envconfig:"CACHE_WEEKLY_CHART_TTL" default:"10m"`
	HourlyChartTTL time.Duration `envconfig:"CACHE_HOURLY_CHART_TTL" default:"5m"`
	TopProductsTTL time.Duration `envconfig:"CACHE_TOP_PRODUCTS_TTL" default:"5m"`
	ActivityTTL    time.Duration `envconfig:"CACHE_ACTIVITY_TTL" default:"2m"`
}

// AnalyticsConfig holds the post-order aggregation thresholds. The values
// are policy, not physics, so they stay configurable.
type AnalyticsConfig struct {
	// Orders per month below RegularPerMonth classify a customer as
	// occasional; at or above FrequentPerMonth as frequent.
	RegularPerMonth  float64 `envconfig:"ANALYTICS_REGULAR_PER_MONTH" default:"2"`
	FrequentPerMonth float64 `envconfig:"ANALYTICS_FREQUENT_PER_MONTH" default:"8"`

	MostOrderedCap   int `envconfig:"ANALYTICS_MOST_ORDERED_CAP" default:"10"`
	FavoriteCatCap   int `envconfig:"ANALYTICS_FAVORITE_CAT_CAP" default:"4"`
	TopProductsLimit int `envconfig:"ANALYTICS_TOP_PRODUCTS_LIMIT" default:"5"`

	// ClaimTTL bounds the per-order dedup claim. Long enough to absorb a
	// duplicate delivered event, short enough that claims do not pile up.
	ClaimTTL time.Duration `envconfig:"ANALYTICS_CLAIM_TTL" default:"72h"`
}

// WorkerConfig holds the background pool settings.
type WorkerConfig struct {
	Size         int           `envconfig:"WORKER_POOL_SIZE" default:"4"`
	QueueSize    int           `envconfig:"WORKER_QUEUE_SIZE" default:"256"`
	DrainTimeout time.Duration `envconfig:"WORKER_DRAIN_TIMEOUT" default:"20s"`
	TaskTimeout  time.Duration `envconfig:"WORKER_TASK_TIMEOUT" default:"30s"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
