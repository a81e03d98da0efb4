package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

// apiError maps service errors to JSON responses. Anything unexpected is
// logged and reported as a 500 without details.
func apiError(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, services.ErrUnknownTenant):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown store"})
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrCategoryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, services.ErrInvalidVariant):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Error(c, action+".fail", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
