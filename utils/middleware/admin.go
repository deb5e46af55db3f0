package middleware

import (
	"github.com/gofiber/fiber/v2"

	"student-fees-api/model"
	"student-fees-api/utils/response"
)

// RequireAdmin ensures the authenticated user has the admin role. Must run
// after AuthMiddleware.Required.
func RequireAdmin() fiber.Handler {
	return RequireRole(model.RoleAdmin)
}

// RequireRole ensures the authenticated user has one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok || user == nil {
			return response.Unauthorized(c, "Authentication required")
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return response.Forbidden(c, "User role "+user.Role+" is not authorized to access this route")
	}
}
