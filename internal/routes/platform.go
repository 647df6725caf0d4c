package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RegisterPlatformRoutes exposes read-only platform state and stats.
func RegisterPlatformRoutes(r fiber.Router, d Deps) {
	r.Get("/platform", func(c *fiber.Ctx) error {
		snap := d.Platform.Snapshot()
		count, err := d.Payments.CountRecords(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"fee_bps":        snap.FeeBps,
			"treasury":       snap.Treasury,
			"paused":         snap.Paused,
			"total_payments": count,
		})
	})
}
