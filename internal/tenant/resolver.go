// Package tenant turns an inbound host into a tenant identity and resolves
// the tenant's configuration bundle.
package tenant

import (
	"net"
	"strings"
)

// Alias maps any subdomain label containing Contains to Tenant.
type Alias struct {
	Contains string
	Tenant   string
}

// Rule names reported by ResolveRule.
const (
	RuleDefault = "default"
	RuleAlias   = "alias"
	RuleLabel   = "label"
)

// Resolver maps hosts to tenant identities. Resolution never fails: an
// unrecognised label is its own tenant.
type Resolver struct {
	Default    string
	DevAliases []string
	Aliases    []Alias
}

func (r Resolver) Resolve(host string) string {
	id, _ := r.ResolveRule(host)
	return id
}

// ResolveRule is Resolve plus the name of the rule that matched.
func (r Resolver) ResolveRule(host string) (string, string) {
	label := Label(host)
	if label == "" || label == "localhost" {
		return r.Default, RuleDefault
	}
	for _, dev := range r.DevAliases {
		if dev != "" && strings.Contains(label, dev) {
			return r.Default, RuleDefault
		}
	}
	for _, a := range r.Aliases {
		if a.Contains != "" && strings.Contains(label, a.Contains) {
			return a.Tenant, RuleAlias
		}
	}
	return label, RuleLabel
}

// Label returns the subdomain label of host: port stripped, text before the first dot.
func Label(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if i := strings.IndexByte(host, '.'); i >= 0 {
		return host[:i]
	}
	return host
}
