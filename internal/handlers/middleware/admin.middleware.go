package middleware

import (
	"slices"

	"staylane/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole admits authenticated users holding one of roles. It must run
// after RequireAuth.
func (m *Middleware) RequireRole(roles ...models.UserRole) fiber.Handler {
	log := m.log.Function("RequireRole")

	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			log.Info("user not found in context")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if !slices.Contains(roles, user.Role) {
			log.Info("role not permitted", "userID", user.ID, "role", user.Role, "path", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}

		return c.Next()
	}
}

func (m *Middleware) RequireAdmin() fiber.Handler {
	return m.RequireRole(models.RoleAdmin)
}
