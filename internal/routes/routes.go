package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/beneficiary"
	"github.com/remitpay/remitpay/internal/config"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/ledger"
	"github.com/remitpay/remitpay/internal/limits"
	"github.com/remitpay/remitpay/internal/middleware"
	"github.com/remitpay/remitpay/internal/notification"
	"github.com/remitpay/remitpay/internal/payment"
	"github.com/remitpay/remitpay/internal/platform"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	Platform      *platform.Platform
	Guard         *limits.Guard
	Identity      *identity.Service
	Ledger        *ledger.Service
	Beneficiaries *beneficiary.Service
	Payments      *payment.Service
	Assets        asset.Registry
	Emitter       notification.Emitter
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	identityHandler := identity.NewHandler(d.Identity)
	ledgerHandler := ledger.NewHandler(d.Ledger)
	beneficiaryHandler := beneficiary.NewHandler(d.Beneficiaries)
	paymentHandler := payment.NewHandler(d.Payments)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterIdentityRoutes(api, identityHandler)
	RegisterLedgerRoutes(api, ledgerHandler)
	RegisterBeneficiaryRoutes(api, beneficiaryHandler)
	RegisterPaymentRoutes(api, paymentHandler)
	RegisterLimitRoutes(api, d.Guard)
	RegisterPlatformRoutes(api, d)

	admin := api.Group("/admin", middleware.AdminKey(d.Cfg.AdminAPIKey))
	RegisterAdminRoutes(admin, d)
}
