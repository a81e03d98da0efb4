package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain"
)

func TestHome_RendersTenantCatalog(t *testing.T) {
	app := newApp(t)
	cl := newClient(t, app, "acme.shop.test")

	resp, body := cl.do("GET", "/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("x-company-domain"); got != "acme" {
		t.Fatalf("tenant header: %q", got)
	}
	s := string(body)
	for _, want := range []string{"Acme Supply", "Claw Hammer", `data-lazy="/api/v1/categories/acme-anvils"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if cl.cookies["did"] == nil || cl.cookies["sid"] == nil {
		t.Fatalf("visitor cookies not issued: %v", cl.cookies)
	}
}

func TestHome_HostResolution(t *testing.T) {
	app := newApp(t)
	cases := []struct {
		host, tenant string
	}{
		{"localhost:8080", "mashallah"},
		{"mashallah-staging.example.com", "mashallah"},
		{"preview-42.example.com", "demo"},
		{"acme.example.com", "acme"},
	}
	for _, tc := range cases {
		resp, _ := newClient(t, app, tc.host).do("GET", "/", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", tc.host, resp.StatusCode)
		}
		if got := resp.Header.Get("x-company-domain"); got != tc.tenant {
			t.Errorf("%s: want %s, got %s", tc.host, tc.tenant, got)
		}
	}
}

func TestHome_UnknownTenantIs404(t *testing.T) {
	app := newApp(t)
	resp, body := newClient(t, app, "nobody.example.com").do("GET", "/", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "find this store") {
		t.Fatalf("not-found page not rendered: %s", body)
	}
}

func TestTenantEndpoint(t *testing.T) {
	app := newApp(t, func(c *config.Config) {
		c.Themes.Tenants = map[string]domain.TenantConfig{
			"acme": {Theme: domain.Theme{Primary: "#ff0000"}, Features: map[string]bool{"ratings": false}},
		}
	})
	cl := newClient(t, app, "acme.example.com")
	m := cl.json("GET", "/api/v1/tenant", nil, http.StatusOK)

	if m["tenant"] != "acme" {
		t.Fatalf("tenant: %v", m["tenant"])
	}
	cfg := m["config"].(map[string]any)
	theme := cfg["theme"].(map[string]any)
	if theme["primary"] != "#ff0000" {
		t.Fatalf("override not applied: %v", theme)
	}
	features := cfg["features"].(map[string]any)
	if features["ratings"] != false || features["wishlist"] != true {
		t.Fatalf("features not merged: %v", features)
	}
	if cfg["currency"] != "EUR" {
		t.Fatalf("company currency not applied: %v", cfg["currency"])
	}

	newClient(t, app, "nobody.example.com").json("GET", "/api/v1/tenant", nil, http.StatusNotFound)
}
