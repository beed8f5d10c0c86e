package lap

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, ledger *Ledger) {
	r.Get("/laps", func(c *fiber.Ctx) error {
		return c.JSON(ledger.All())
	})

	r.Get("/laps/recent/:count", func(c *fiber.Ctx) error {
		count, err := strconv.Atoi(c.Params("count"))
		if err != nil || count <= 0 {
			count = 10
		}
		return c.JSON(ledger.Recent(count))
	})
}
