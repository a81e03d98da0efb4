package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/tenant"
)

type StorefrontHandler struct {
	Front    *services.StorefrontService
	Provider *tenant.Provider
	Cookies  Cookies
}

// Home is one page load: reconcile the visitor's catalog and render it.
func (h *StorefrontHandler) Home(c *fiber.Ctx) error {
	sc := h.Cookies.Scope(c)
	view, err := h.Front.Load(c.UserContext(), sc)
	if err != nil {
		return err
	}
	if view.NotFound {
		applog.Info(c, "storefront.unknown_tenant", nil)
		return notFound(c, "We couldn't find this store.")
	}
	return render(c, "home", fiber.Map{"View": view})
}

// Tenant returns the resolved tenant with its configuration bundle.
func (h *StorefrontHandler) Tenant(c *fiber.Ctx) error {
	id := tenant.FromCtx(c)
	company, err := h.Front.Company(c.UserContext(), id)
	if err != nil {
		return apiError(c, "tenant.lookup", err)
	}
	return c.JSON(fiber.Map{
		"tenant":  id,
		"config":  tenant.WithCompany(h.Provider.Config(id), company),
		"company": company,
	})
}
