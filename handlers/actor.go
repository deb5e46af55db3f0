package handlers

import (
	"github.com/gofiber/fiber/v2"

	"student-fees-api/services"
	"student-fees-api/utils/middleware"
)

// ActorFrom builds the service-layer actor from the authenticated request.
// Returns a zero actor when authentication middleware did not run.
func ActorFrom(c *fiber.Ctx) services.Actor {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return services.Actor{}
	}
	return services.Actor{UserID: user.ID, Role: user.Role}
}
