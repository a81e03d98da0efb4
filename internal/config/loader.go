package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "storefront.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
func Load() (Config, error) {
	path := DefaultConfigFile
	if p := os.Getenv("STOREFRONT_CONFIG"); p != "" {
		path = p
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit YAML path. A missing file is not an error.
func LoadFrom(yamlPath string) (Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return Config{}, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("config validate: %w", err)
	}
	cfg.logSummary()
	return cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DBDSN, "DB_DSN")
	setString(&cfg.MediaDir, "MEDIA_DIR")
	setString(&cfg.LogFile, "LOG_FILE")

	setString(&cfg.Tenancy.DefaultTenant, "STOREFRONT_DEFAULT_TENANT")
	setString(&cfg.Tenancy.Header, "STOREFRONT_TENANT_HEADER")

	setDuration(&cfg.Catalog.ExpirationWindow, "STOREFRONT_CATALOG_TTL")
	setInt(&cfg.Catalog.EagerCategories, "STOREFRONT_EAGER_CATEGORIES")
	setDuration(&cfg.Wishlist.Expiration, "STOREFRONT_WISHLIST_TTL")

	setBool(&cfg.Storage.PartitionByTenant, "STOREFRONT_PARTITION_BY_TENANT")
	setDuration(&cfg.Storage.SessionIdleTTL, "STOREFRONT_SESSION_IDLE_TTL")
	setDuration(&cfg.Storage.DeviceTTL, "STOREFRONT_DEVICE_TTL")
	setInt64(&cfg.Storage.L1MaxSizeMB, "STOREFRONT_L1_SIZE_MB")

	setFloat64(&cfg.Upstream.RequestsPerSecond, "STOREFRONT_UPSTREAM_RPS")
	setInt(&cfg.Upstream.Burst, "STOREFRONT_UPSTREAM_BURST")
	setDuration(&cfg.Upstream.CompanyCacheTTL, "STOREFRONT_COMPANY_CACHE_TTL")
	setInt64(&cfg.Upstream.CompanyCacheMB, "STOREFRONT_COMPANY_CACHE_MB")
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return errors.New("port is required")
	}
	if cfg.DBDSN == "" {
		return errors.New("db_dsn is required")
	}
	if cfg.Tenancy.DefaultTenant == "" {
		return errors.New("tenancy.default_tenant is required")
	}
	if cfg.Tenancy.Header == "" {
		return errors.New("tenancy.header is required")
	}
	for i, a := range cfg.Tenancy.Aliases {
		if a.Contains == "" || a.Tenant == "" {
			return fmt.Errorf("tenancy.aliases[%d]: contains and tenant are required", i)
		}
	}
	if cfg.Catalog.ExpirationWindow <= 0 {
		return errors.New("catalog.expiration_window must be > 0")
	}
	if cfg.Wishlist.Expiration <= 0 {
		return errors.New("wishlist.expiration must be > 0")
	}
	if cfg.Storage.L1MaxSizeMB < 1 {
		return errors.New("storage.l1_max_size_mb must be >= 1")
	}
	if cfg.Upstream.CompanyCacheMB < 1 {
		return errors.New("upstream.company_cache_mb must be >= 1")
	}
	if cfg.Upstream.RequestsPerSecond <= 0 || cfg.Upstream.Burst < 1 {
		return errors.New("upstream.requests_per_second must be > 0 and upstream.burst >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
