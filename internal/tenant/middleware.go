package tenant

import (
	"context"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/metrics"
)

// LocalsKey is the fiber Locals key holding the resolved tenant.
const LocalsKey = "tenant"

// DefaultHeader is the propagated request header carrying the tenant.
const DefaultHeader = "x-company-domain"

// WithTenant returns ctx carrying id. Logs written with ctx carry it too.
func WithTenant(ctx context.Context, id string) context.Context {
	return applog.WithTenant(ctx, id)
}

// FromContext returns the tenant stored in ctx, or "" if absent.
func FromContext(ctx context.Context) string {
	return applog.TenantFrom(ctx)
}

// FromCtx returns the tenant resolved for the current request.
func FromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsKey).(string)
	return id
}

// Middleware resolves the tenant from the Host header once per request and
// propagates it to Locals, the user context, the request header and the
// response header. X-Forwarded-Host is ignored.
func Middleware(r Resolver, header string, m *metrics.Metrics) fiber.Handler {
	if header == "" {
		header = DefaultHeader
	}
	return func(c *fiber.Ctx) error {
		id, rule := r.ResolveRule(string(c.Request().Host()))
		m.Resolved(c.UserContext(), rule)

		ctx := WithTenant(c.UserContext(), id)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = applog.WithRequestID(ctx, rid)
		}
		c.Locals(LocalsKey, id)
		c.SetUserContext(ctx)
		c.Request().Header.Set(header, id)
		c.Set(header, id)
		return c.Next()
	}
}
