package config

import (
	"log"
	"time"

	"storefront/internal/domain"
)

type Config struct {
	Port     string `yaml:"port"`
	DBDSN    string `yaml:"db_dsn"`
	MediaDir string `yaml:"media_dir"`
	LogFile  string `yaml:"log_file"`

	Tenancy  Tenancy  `yaml:"tenancy"`
	Catalog  Catalog  `yaml:"catalog"`
	Wishlist Wishlist `yaml:"wishlist"`
	Storage  Storage  `yaml:"storage"`
	Upstream Upstream `yaml:"upstream"`
	Themes   Themes   `yaml:"themes"`
}

// AliasRule maps any subdomain label containing Contains to Tenant.
type AliasRule struct {
	Contains string `yaml:"contains"`
	Tenant   string `yaml:"tenant"`
}

type Tenancy struct {
	DefaultTenant string      `yaml:"default_tenant"`
	DevAliases    []string    `yaml:"dev_aliases"`
	Aliases       []AliasRule `yaml:"aliases"`
	Header        string      `yaml:"header"`
}

type Catalog struct {
	// ExpirationWindow is the TTL after which a cached category is stale.
	ExpirationWindow time.Duration `yaml:"expiration_window"`
	// EagerCategories is how many categories the company service returns
	// populated; the rest are sent as skeletons.
	EagerCategories int `yaml:"eager_categories"`
}

type Wishlist struct {
	Expiration time.Duration `yaml:"expiration"`
}

type Storage struct {
	// PartitionByTenant namespaces persisted keys by tenant identity.
	PartitionByTenant bool          `yaml:"partition_by_tenant"`
	SessionIdleTTL    time.Duration `yaml:"session_idle_ttl"`
	DeviceTTL         time.Duration `yaml:"device_ttl"`
	L1MaxSizeMB       int64         `yaml:"l1_max_size_mb"`
}

type Upstream struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	CompanyCacheTTL   time.Duration `yaml:"company_cache_ttl"`
	// CompanyCacheMB sizes the company cache, kept apart from session carts.
	CompanyCacheMB int64 `yaml:"company_cache_mb"`
}

type Themes struct {
	Defaults domain.TenantConfig            `yaml:"defaults"`
	Tenants  map[string]domain.TenantConfig `yaml:"tenants"`
}

// Defaults returns a Config with every field set to its built-in value.
func Defaults() Config {
	return Config{
		Port:     "8080",
		DBDSN:    "storefront.db", // sqlite file in project root
		MediaDir: "./web/media",
		LogFile:  "./storefront.log",
		Tenancy: Tenancy{
			DefaultTenant: "mashallah",
			DevAliases:    []string{"mashallah"},
			Aliases:       []AliasRule{{Contains: "preview", Tenant: "demo"}},
			Header:        "x-company-domain",
		},
		Catalog: Catalog{
			ExpirationWindow: 24 * time.Hour,
			EagerCategories:  2,
		},
		Wishlist: Wishlist{Expiration: 7 * 24 * time.Hour},
		Storage: Storage{
			SessionIdleTTL: 30 * time.Minute,
			DeviceTTL:      90 * 24 * time.Hour,
			L1MaxSizeMB:    64,
		},
		Upstream: Upstream{
			RequestsPerSecond: 50,
			Burst:             50,
			CompanyCacheTTL:   45 * time.Second,
			CompanyCacheMB:    8,
		},
		Themes: Themes{
			Defaults: domain.TenantConfig{
				Title:    "Storefront",
				Theme:    domain.Theme{Primary: "#111827", Accent: "#f59e0b", Font: "Inter"},
				Features: map[string]bool{"wishlist": true, "ratings": true},
				Currency: "USD",
				Locale:   "en-US",
			},
		},
	}
}

func (c Config) logSummary() {
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s DEFAULT_TENANT=%s CATALOG_TTL=%s PARTITION_BY_TENANT=%t",
		c.Port, c.DBDSN, c.MediaDir, c.LogFile, c.Tenancy.DefaultTenant, c.Catalog.ExpirationWindow, c.Storage.PartitionByTenant)
}
