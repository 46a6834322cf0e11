package config

import (
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Sync      SyncConfig      `yaml:"sync"`
	Parsing   ParsingConfig   `yaml:"parsing"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
	// RateLimitRPM caps calculator API requests per client IP per minute.
	// Zero disables the limit. Counting needs storage.redis.
	RateLimitRPM     int           `yaml:"rate_limit_rpm"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// PricingConfig tells consumers where the normalized catalog lives.
// CatalogURL wins over CatalogPath when both are set.
type PricingConfig struct {
	CatalogPath  string        `yaml:"catalog_path"`
	CatalogURL   string        `yaml:"catalog_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// SyncConfig drives the one-shot normalization job. Env tags mirror the
// variables the scheduled function is deployed with.
type SyncConfig struct {
	FeedURL        string        `yaml:"feed_url" env:"PRICING_URL"`
	ServiceCode    string        `yaml:"service_code" env:"SERVICE_CODE"`
	OutputPath     string        `yaml:"output_path" env:"OUTPUT_PATH"`
	OutputBucket   string        `yaml:"output_bucket" env:"OUTPUT_BUCKET"`
	OutputKey      string        `yaml:"output_key" env:"OUTPUT_KEY"`
	AWSRegion      string        `yaml:"aws_region" env:"AWS_REGION"`
	PushgatewayURL string        `yaml:"pushgateway_url" env:"PUSHGATEWAY_URL"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	// Schedule is a cron expression. When set, the pricing server runs the
	// sync in-process and publishes to pricing.catalog_path.
	Schedule string `yaml:"schedule" env:"SYNC_SCHEDULE"`
}

// ParsingConfig holds the vendor-specific usagetype conventions. The
// defaults match the AWS Bedrock feed; they are heuristics, not a grammar.
type ParsingConfig struct {
	RegionPrefixPattern string   `yaml:"region_prefix_pattern"`
	ModifierPattern     string   `yaml:"modifier_pattern"`
	ExcludedKeywords    []string `yaml:"excluded_keywords"`
	DefaultProvider     string   `yaml:"default_provider"`
}

type StorageConfig struct {
	// Backend is one of: file, sqlite, redis, postgres.
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
}

// RedisConfig is used by the redis backend, and as a read-through cache in
// front of postgres when CacheTTL is set.
type RedisConfig struct {
	Addresses []string      `yaml:"addresses"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"pool_size"`
	KeyPrefix string        `yaml:"key_prefix"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int32  `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + strconv.Itoa(d.Port) + "/" + d.Name + "?sslmode=disable"
}

type TelemetryConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             3000,
			StaticDir:        "web",
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Pricing: PricingConfig{
			CatalogPath:  "normalized-pricing.json",
			FetchTimeout: 10 * time.Second,
		},
		Sync: SyncConfig{
			FeedURL:      "https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/AmazonBedrock/current/index.json",
			ServiceCode:  "AmazonBedrock",
			OutputPath:   "normalized-pricing.json",
			OutputKey:    "bedrock/normalized-pricing.json",
			AWSRegion:    "us-east-1",
			FetchTimeout: 2 * time.Minute,
		},
		Parsing: ParsingConfig{
			RegionPrefixPattern: `^(use1|usw2|aps\d+|eu\w+|can\d+|eun\d+|eus\d+|apn\d+)-`,
			ModifierPattern:     `-(batch|priority|flex|cross-region-global)`,
			ExcludedKeywords: []string{
				"image", "audio", "video", "embedding", "guardrail",
				"customization", "storage", "provisionedthroughput",
			},
			DefaultProvider: "AWS Bedrock",
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    "data",
			Redis: RedisConfig{
				Addresses: []string{"localhost:6379"},
				PoolSize:  10,
				KeyPrefix: "llmcost:",
			},
			Database: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Name:     "llmcost",
				User:     "llmcost",
				MaxConns: 4,
			},
		},
		Telemetry: TelemetryConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}
