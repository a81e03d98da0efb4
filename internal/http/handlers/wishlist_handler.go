package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type WishlistHandler struct {
	Wish     *services.WishlistService
	Sessions *services.SessionService
	Cookies  Cookies
}

type wishlistReq struct {
	ProductID string `json:"productId" form:"productId"`
}

func (h *WishlistHandler) respond(c *fiber.Ctx, sc services.Scope, extra fiber.Map) error {
	body := fiber.Map{
		"wishlist": h.Wish.View(c.UserContext(), sc),
		"notices":  h.Sessions.Notices(c.UserContext(), sc),
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	return h.respond(c, h.Cookies.Scope(c), nil)
}

// Toggle saves or unsaves a product.
func (h *WishlistHandler) Toggle(c *fiber.Ctx) error {
	sc := h.Cookies.Scope(c)
	var req wishlistReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return badRequest(c, "missing productId")
	}
	saved, err := h.Wish.Toggle(c.UserContext(), sc, pid)
	if err != nil {
		return apiError(c, "wishlist.toggle", err)
	}
	action := "wishlist.unsave"
	if saved {
		action = "wishlist.save"
	}
	applog.Audit(c, action, map[string]any{"product": pid})
	return h.respond(c, sc, fiber.Map{"saved": saved})
}

func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	sc := h.Cookies.Scope(c)
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "invalid productId")
	}
	h.Wish.Remove(c.UserContext(), sc, pid)
	applog.Audit(c, "wishlist.unsave", map[string]any{"product": pid})
	return h.respond(c, sc, nil)
}

func (h *WishlistHandler) Panel(c *fiber.Ctx) error {
	sc := h.Cookies.Scope(c)
	var req panelReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	h.Wish.SetOpen(c.UserContext(), sc, req.Open)
	return h.respond(c, sc, nil)
}
