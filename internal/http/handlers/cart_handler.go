package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartService
	Sessions *services.SessionService
	Cookies  Cookies
}

type addToCartReq struct {
	ProductID        string            `json:"productId" form:"productId"`
	SelectedVariants map[string]string `json:"selectedVariants" form:"-"`
}

type quantityReq struct {
	Quantity int `json:"quantity" form:"quantity"`
}

type panelReq struct {
	Open bool `json:"open" form:"open"`
}

func (h *CartHandler) respond(c *fiber.Ctx, sc services.Scope) error {
	return c.JSON(fiber.Map{
		"cart":    h.Cart.View(c.UserContext(), sc),
		"notices": h.Sessions.Notices(c.UserContext(), sc),
	})
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return h.respond(c, h.Cookies.Scope(c))
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sc := h.Cookies.Scope(c)
	var req addToCartReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	pid, ok := validate.ID(req.ProductID)
	if !ok {
		return badRequest(c, "missing productId")
	}
	sel, ok := validate.Variants(req.SelectedVariants)
	if !ok {
		return badRequest(c, "invalid selectedVariants")
	}
	line, err := h.Cart.Add(c.UserContext(), sc, pid, sel)
	if err != nil {
		return apiError(c, "cart.add", err)
	}
	applog.Audit(c, "cart.add", map[string]any{"product": pid, "line": line.Key(), "qty": line.Quantity})
	return h.respond(c, sc)
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	sc := h.Cookies.Scope(c)
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "invalid productId")
	}
	var req quantityReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	qty, ok := validate.Quantity(strconv.Itoa(req.Quantity))
	if ok {
		h.Cart.UpdateQuantity(c.UserContext(), sc, pid, qty)
	}
	return h.respond(c, sc)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sc := h.Cookies.Scope(c)
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badRequest(c, "invalid productId")
	}
	h.Cart.Remove(c.UserContext(), sc, pid)
	applog.Audit(c, "cart.remove", map[string]any{"product": pid})
	return h.respond(c, sc)
}

func (h *CartHandler) Panel(c *fiber.Ctx) error {
	sc := h.Cookies.Scope(c)
	var req panelReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	h.Cart.SetOpen(c.UserContext(), sc, req.Open)
	return h.respond(c, sc)
}
