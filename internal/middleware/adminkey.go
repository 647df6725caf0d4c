package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const adminKeyHeader = "X-Admin-Key"

// AdminKey protects operator endpoints with a shared secret. The comparison
// is constant time so the key cannot be probed byte by byte.
func AdminKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "admin access not configured")
		}

		provided := c.Get(adminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid admin key")
		}

		return c.Next()
	}
}
