package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storefront/internal/services"
	"storefront/internal/tenant"
	"storefront/internal/validate"
)

const (
	DeviceCookie  = "did"
	SessionCookie = "sid"
)

// Cookies holds the lifetimes of the visitor cookies.
type Cookies struct {
	DeviceTTL time.Duration
	Secure    bool
}

// ensure returns the cookie's value, issuing a fresh id when it is missing
// or malformed. A zero ttl issues a browser-session cookie.
func (k Cookies) ensure(c *fiber.Ctx, name string, ttl time.Duration) string {
	if v, ok := validate.ID(c.Cookies(name)); ok {
		return v
	}
	v := uuid.NewString()
	ck := &fiber.Cookie{
		Name:     name,
		Value:    v,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   k.Secure,
	}
	if ttl > 0 {
		ck.MaxAge = int(ttl.Seconds())
	} else {
		ck.SessionOnly = true
	}
	c.Cookie(ck)
	return v
}

// Scope identifies the visitor of this request.
func (k Cookies) Scope(c *fiber.Ctx) services.Scope {
	return services.Scope{
		Tenant:  tenant.FromCtx(c),
		Device:  k.ensure(c, DeviceCookie, k.DeviceTTL),
		Session: k.ensure(c, SessionCookie, 0),
	}
}
