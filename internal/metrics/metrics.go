// Package metrics holds the storefront's OpenTelemetry instruments.
// Without a configured MeterProvider the global no-op provider is used.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "storefront"

type Metrics struct {
	TenantResolutions metric.Int64Counter
	ReconcileOutcomes metric.Int64Counter
	CatalogFetchFails metric.Int64Counter
	WishlistExpired   metric.Int64Counter
}

func New() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TenantResolutions, err = meter.Int64Counter("storefront.tenant.resolutions",
		metric.WithDescription("Hosts resolved to a tenant, by rule"))
	if err != nil {
		return nil, err
	}
	m.ReconcileOutcomes, err = meter.Int64Counter("storefront.catalog.reconcile",
		metric.WithDescription("Per-category reconciliation outcomes"))
	if err != nil {
		return nil, err
	}
	m.CatalogFetchFails, err = meter.Int64Counter("storefront.catalog.fetch_failures",
		metric.WithDescription("Server catalog fetches that degraded to an empty list"))
	if err != nil {
		return nil, err
	}
	m.WishlistExpired, err = meter.Int64Counter("storefront.wishlist.expired",
		metric.WithDescription("Wishlists cleared by the TTL check"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// The helpers below are nil-safe so callers may run without metrics.

func (m *Metrics) Resolved(ctx context.Context, rule string) {
	if m == nil {
		return
	}
	m.TenantResolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}

func (m *Metrics) Reconciled(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.ReconcileOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) FetchFailed(ctx context.Context, tenant string) {
	if m == nil {
		return
	}
	m.CatalogFetchFails.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant", tenant)))
}

func (m *Metrics) WishlistCleared(ctx context.Context) {
	if m == nil {
		return
	}
	m.WishlistExpired.Add(ctx, 1)
}
