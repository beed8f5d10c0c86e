package session

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, registry *Registry) {
	r.Get("/agents", func(c *fiber.Ctx) error {
		return c.JSON(registry.Snapshot())
	})
}
