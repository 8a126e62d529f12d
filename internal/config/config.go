package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Export   ExportConfig   `mapstructure:"export"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
	Bucket           string `mapstructure:"bucket"`
}

// ExportConfig 控制导出流水线的资源上限与频率限制。
type ExportConfig struct {
	MaxImageBytes  int64         `mapstructure:"max_image_bytes"`
	Concurrency    int           `mapstructure:"concurrency"`
	RateLimit      int           `mapstructure:"rate_limit_per_hour"`
	LockTTL        time.Duration `mapstructure:"lock_ttl"`
	ArchiveTTL     time.Duration `mapstructure:"archive_ttl"`
	PreviewEnabled bool          `mapstructure:"preview_enabled"`
	MinifyGuard    bool          `mapstructure:"minify_guard"`
}

// ClamdConfig 为空地址时不做病毒扫描。
type ClamdConfig struct {
	Address string `mapstructure:"address"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.MinIO.PublicEndpoint) == "" {
		scheme := "http"
		if cfg.MinIO.UseSSL {
			scheme = "https"
		}
		cfg.MinIO.PublicEndpoint = scheme + "://" + cfg.MinIO.Endpoint
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "portfoliox")
	v.SetDefault("database.user", "portfoliox")
	v.SetDefault("database.password", "portfoliox")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("minio.bucket", "portfolios")
	v.SetDefault("export.max_image_bytes", 5<<20)
	v.SetDefault("export.concurrency", 4)
	v.SetDefault("export.rate_limit_per_hour", 30)
	v.SetDefault("export.lock_ttl", "2m")
	v.SetDefault("export.archive_ttl", "24h")
	v.SetDefault("export.preview_enabled", false)
	v.SetDefault("export.minify_guard", true)
	v.SetDefault("clamd.address", "")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                   "API_PORT",
		"database.host":              "DATABASE_HOST",
		"database.port":              "DATABASE_PORT",
		"database.name":              "POSTGRES_DB",
		"database.user":              "POSTGRES_USER",
		"database.password":          "POSTGRES_PASSWORD",
		"database.sslmode":           "DATABASE_SSLMODE",
		"redis.host":                 "REDIS_HOST",
		"redis.port":                 "REDIS_PORT",
		"minio.endpoint":             "MINIO_ENDPOINT",
		"minio.public_endpoint":      "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":        "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":    "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":              "MINIO_USE_SSL",
		"minio.region":               "MINIO_REGION",
		"minio.bucket_lookup":        "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":   "MINIO_AUTO_CREATE_BUCKET",
		"minio.bucket":               "MINIO_BUCKET",
		"export.max_image_bytes":     "EXPORT_MAX_IMAGE_BYTES",
		"export.concurrency":         "EXPORT_CONCURRENCY",
		"export.rate_limit_per_hour": "EXPORT_RATE_LIMIT_PER_HOUR",
		"export.lock_ttl":            "EXPORT_LOCK_TTL",
		"export.archive_ttl":         "EXPORT_ARCHIVE_TTL",
		"export.preview_enabled":     "EXPORT_PREVIEW_ENABLED",
		"export.minify_guard":        "EXPORT_MINIFY_GUARD",
		"clamd.address":              "CLAMD_ADDRESS",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Export.MaxImageBytes <= 0 {
		return errors.New("export max image bytes must be positive")
	}
	if cfg.Export.Concurrency <= 0 {
		return errors.New("export concurrency must be positive")
	}
	if cfg.Export.RateLimit < 0 {
		return errors.New("export rate limit must not be negative")
	}
	if cfg.Export.LockTTL <= 0 {
		return errors.New("export lock ttl must be positive")
	}
	if cfg.Export.ArchiveTTL <= 0 {
		return errors.New("export archive ttl must be positive")
	}
	return nil
}
