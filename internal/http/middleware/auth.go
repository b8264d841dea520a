package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docmark/internal/auth"
)

// OwnerIDLocalKey is the key used to store the authenticated user id in Fiber's context locals.
const OwnerIDLocalKey = "owner_id"

// Auth verifies the bearer token and stores its user id under OwnerIDLocalKey.
// Requests without a valid token are rejected with 401 before reaching any handler.
func Auth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := auth.UserIDFromToken(strings.TrimSpace(token), secret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(OwnerIDLocalKey, userID)
		return c.Next()
	}
}

// OwnerID returns the authenticated user id, or "" outside Auth.
func OwnerID(c *fiber.Ctx) string {
	id, _ := c.Locals(OwnerIDLocalKey).(string)
	return id
}
