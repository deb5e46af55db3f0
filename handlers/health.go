package handlers

import (
	"github.com/gofiber/fiber/v2"

	"student-fees-api/database"
	"student-fees-api/utils/response"
)

// Health handles GET /api/health
func Health(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.Error(c, fiber.StatusServiceUnavailable, "InternalError", "Database unavailable")
		}
		return response.Success(c, fiber.Map{"status": "ok"})
	}
}
