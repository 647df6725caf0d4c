package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/identity"
)

// RegisterIdentityRoutes wires user registration and profile endpoints.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler) {
	r.Post("/users", h.Register)
	r.Get("/users/:userId", h.Get)
}
