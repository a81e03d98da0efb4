package tenant

import (
	"maps"

	"storefront/internal/domain"
)

// Provider resolves a tenant's configuration bundle: defaults overlaid with
// the tenant's overrides. It holds no mutable state.
type Provider struct {
	defaults  domain.TenantConfig
	overrides map[string]domain.TenantConfig
}

func NewProvider(defaults domain.TenantConfig, overrides map[string]domain.TenantConfig) *Provider {
	return &Provider{defaults: defaults, overrides: overrides}
}

func (p *Provider) Config(tenantID string) domain.TenantConfig {
	out := p.defaults
	out.Tenant = tenantID
	out.Features = maps.Clone(p.defaults.Features)
	if out.Features == nil {
		out.Features = map[string]bool{}
	}

	o, ok := p.overrides[tenantID]
	if !ok {
		return out
	}
	if o.Title != "" {
		out.Title = o.Title
	}
	if o.Currency != "" {
		out.Currency = o.Currency
	}
	if o.Locale != "" {
		out.Locale = o.Locale
	}
	if o.Theme.Primary != "" {
		out.Theme.Primary = o.Theme.Primary
	}
	if o.Theme.Accent != "" {
		out.Theme.Accent = o.Theme.Accent
	}
	if o.Theme.Font != "" {
		out.Theme.Font = o.Theme.Font
	}
	if o.Theme.LogoURL != "" {
		out.Theme.LogoURL = o.Theme.LogoURL
	}
	maps.Copy(out.Features, o.Features)
	return out
}

// WithCompany fills blanks in cfg from what the company service knows.
func WithCompany(cfg domain.TenantConfig, company *domain.CompanyDetails) domain.TenantConfig {
	if company == nil {
		return cfg
	}
	if company.Currency != "" {
		cfg.Currency = company.Currency
	}
	if company.Locale != "" {
		cfg.Locale = company.Locale
	}
	if cfg.Theme.LogoURL == "" {
		cfg.Theme.LogoURL = company.LogoURL
	}
	if company.Name != "" {
		cfg.Title = company.Name
	}
	return cfg
}
