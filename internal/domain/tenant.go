package domain

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Theme struct {
	Primary string `json:"primary,omitempty" yaml:"primary"`
	Accent  string `json:"accent,omitempty" yaml:"accent"`
	Font    string `json:"font,omitempty" yaml:"font"`
	LogoURL string `json:"logoUrl,omitempty" yaml:"logo_url"`
}

// TenantConfig is the per-tenant configuration bundle (theme + feature flags).
type TenantConfig struct {
	Tenant   string          `json:"tenant" yaml:"-"`
	Title    string          `json:"title,omitempty" yaml:"title"`
	Theme    Theme           `json:"theme" yaml:"theme"`
	Features map[string]bool `json:"features,omitempty" yaml:"features"`
	Currency string          `json:"currency,omitempty" yaml:"currency"`
	Locale   string          `json:"locale,omitempty" yaml:"locale"`
}

func (c TenantConfig) Enabled(feature string) bool { return c.Features[feature] }

// FormatPrice renders amount in the tenant's currency and locale.
// Unknown currency codes fall back to a plain two-decimal rendering.
func (c TenantConfig) FormatPrice(amount float64) string {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return fmt.Sprintf("%.2f", amount)
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
