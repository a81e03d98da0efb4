package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "storefront.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tenancy.DefaultTenant != "mashallah" || cfg.Wishlist.Expiration != 7*24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFrom_YAMLThenEnv(t *testing.T) {
	p := writeYAML(t, `
port: "9000"
tenancy:
  default_tenant: house
  aliases:
    - contains: staging
      tenant: qa
catalog:
  expiration_window: 2h
themes:
  tenants:
    acme:
      title: Acme
      currency: EUR
`)
	t.Setenv("PORT", "9100")
	t.Setenv("STOREFRONT_PARTITION_BY_TENANT", "true")

	cfg, err := LoadFrom(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("env should win over yaml, got port %s", cfg.Port)
	}
	if cfg.Tenancy.DefaultTenant != "house" || len(cfg.Tenancy.Aliases) != 1 || cfg.Tenancy.Aliases[0].Tenant != "qa" {
		t.Fatalf("tenancy not loaded: %+v", cfg.Tenancy)
	}
	if cfg.Catalog.ExpirationWindow != 2*time.Hour {
		t.Fatalf("want 2h ttl, got %s", cfg.Catalog.ExpirationWindow)
	}
	if !cfg.Storage.PartitionByTenant {
		t.Fatal("partition flag from env not applied")
	}
	if cfg.Themes.Tenants["acme"].Currency != "EUR" {
		t.Fatalf("tenant theme not loaded: %+v", cfg.Themes.Tenants)
	}
}

func TestLoadFrom_ValidationFails(t *testing.T) {
	p := writeYAML(t, `
tenancy:
  aliases:
    - contains: ""
      tenant: x
`)
	if _, err := LoadFrom(p); err == nil {
		t.Fatal("expected validation error for empty alias")
	}
}
