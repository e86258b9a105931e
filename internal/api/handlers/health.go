package handlers

import (
	"route-finder-service/internal/services"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health provides a minimal liveness check endpoint.
func Health(p *services.Pipeline) fiber.Handler {
	startedAt := time.Now()
	geocoder, router := p.Providers()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"uptime":   time.Since(startedAt).Round(time.Second).String(),
			"geocoder": geocoder,
			"router":   router,
		})
	}
}
