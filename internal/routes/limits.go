package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/limits"
)

// RegisterLimitRoutes exposes a user's daily spend position per asset.
func RegisterLimitRoutes(r fiber.Router, guard *limits.Guard) {
	r.Get("/users/:userId/limits/:assetId", func(c *fiber.Ctx) error {
		userID := c.Params("userId")
		assetID := c.Params("assetId")

		limit := guard.Limit(userID)
		spent := guard.Spent(userID, assetID)

		resp := fiber.Map{
			"user_id": userID,
			"asset":   assetID,
			"limit":   limit,
			"spent":   spent,
		}
		if limit > 0 {
			remaining := limit - spent
			if remaining < 0 {
				remaining = 0
			}
			resp["remaining"] = remaining
		}
		return c.JSON(resp)
	})
}
