package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/custodian"
	"github.com/remitpay/remitpay/internal/notification"
	"github.com/remitpay/remitpay/internal/platform"
)

// RegisterAdminRoutes wires operator endpoints: platform controls, fee and
// treasury configuration, per-user daily limits, the asset registry and the
// emergency drain. All of them sit behind the admin key middleware.
func RegisterAdminRoutes(r fiber.Router, d Deps) {
	actor := d.Cfg.AdminIdentity

	r.Post("/pause", func(c *fiber.Ctx) error {
		if err := d.Platform.Pause(actor); err != nil {
			return mapPlatformError(err)
		}
		notification.EmitBestEffort(c.UserContext(), d.Emitter, notification.Event{Kind: notification.KindPaused, Actor: actor})
		return c.JSON(fiber.Map{"paused": true})
	})

	r.Post("/unpause", func(c *fiber.Ctx) error {
		if err := d.Platform.Unpause(actor); err != nil {
			return mapPlatformError(err)
		}
		notification.EmitBestEffort(c.UserContext(), d.Emitter, notification.Event{Kind: notification.KindUnpaused, Actor: actor})
		return c.JSON(fiber.Map{"paused": false})
	})

	r.Put("/fee", func(c *fiber.Ctx) error {
		var req struct {
			FeeBps int64 `json:"fee_bps"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := d.Platform.SetFee(actor, req.FeeBps); err != nil {
			return mapPlatformError(err)
		}
		notification.EmitBestEffort(c.UserContext(), d.Emitter, notification.Event{Kind: notification.KindFeeUpdated, Actor: actor, Fee: req.FeeBps})
		return c.JSON(fiber.Map{"fee_bps": req.FeeBps})
	})

	r.Put("/treasury", func(c *fiber.Ctx) error {
		var req struct {
			Treasury string `json:"treasury"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := d.Platform.SetTreasury(actor, req.Treasury); err != nil {
			return mapPlatformError(err)
		}
		notification.EmitBestEffort(c.UserContext(), d.Emitter, notification.Event{Kind: notification.KindTreasuryUpdated, Actor: actor, Subject: req.Treasury})
		return c.JSON(fiber.Map{"treasury": req.Treasury})
	})

	r.Put("/users/:userId/limit", func(c *fiber.Ctx) error {
		var req struct {
			Limit int64 `json:"limit"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		userID := c.Params("userId")
		d.Guard.SetLimit(userID, req.Limit)
		notification.EmitBestEffort(c.UserContext(), d.Emitter, notification.Event{Kind: notification.KindLimitSet, Actor: actor, Subject: userID, Amount: req.Limit})
		return c.JSON(fiber.Map{"user_id": userID, "limit": req.Limit})
	})

	r.Get("/assets", func(c *fiber.Ctx) error {
		ids, err := d.Assets.List(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"assets": ids})
	})

	r.Post("/assets/:assetId", func(c *fiber.Ctx) error {
		assetID := c.Params("assetId")
		if err := d.Assets.Add(c.UserContext(), assetID); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		notification.EmitBestEffort(c.UserContext(), d.Emitter, notification.Event{Kind: notification.KindAssetAdded, Actor: actor, Asset: assetID})
		return c.SendStatus(http.StatusCreated)
	})

	r.Delete("/assets/:assetId", func(c *fiber.Ctx) error {
		assetID := c.Params("assetId")
		if err := d.Assets.Remove(c.UserContext(), assetID); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		notification.EmitBestEffort(c.UserContext(), d.Emitter, notification.Event{Kind: notification.KindAssetRemoved, Actor: actor, Asset: assetID})
		return c.SendStatus(http.StatusNoContent)
	})

	r.Post("/emergency-withdraw", func(c *fiber.Ctx) error {
		var req struct {
			Asset       string `json:"asset"`
			Amount      int64  `json:"amount"`
			Destination string `json:"destination"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := d.Ledger.EmergencyWithdraw(c.UserContext(), actor, req.Asset, req.Amount, req.Destination); err != nil {
			switch {
			case errors.Is(err, platform.ErrUnauthorized):
				return fiber.NewError(http.StatusForbidden, err.Error())
			case errors.Is(err, custodian.ErrTransferFailed):
				return fiber.NewError(http.StatusBadGateway, err.Error())
			default:
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
		}
		return c.JSON(fiber.Map{"status": "released"})
	})
}

func mapPlatformError(err error) error {
	switch {
	case errors.Is(err, platform.ErrUnauthorized):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, platform.ErrInvalidFee), errors.Is(err, platform.ErrInvalidTreasury):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
