package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
	"storefront/internal/validate"
)

type CategoryHandler struct {
	Front   *services.StorefrontService
	Cookies Cookies
}

// State returns the visitor's reconciled catalog.
func (h *CategoryHandler) State(c *fiber.Ctx) error {
	return c.JSON(h.Front.State(c.UserContext(), h.Cookies.Scope(c)))
}

// Category lazy-loads one category into the visitor's catalog.
func (h *CategoryHandler) Category(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid category id")
	}
	cat, err := h.Front.LoadCategory(c.UserContext(), h.Cookies.Scope(c), id)
	if err != nil {
		return apiError(c, "catalog.category", err)
	}
	return c.JSON(cat)
}
