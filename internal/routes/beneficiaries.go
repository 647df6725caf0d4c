package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/beneficiary"
)

// RegisterBeneficiaryRoutes wires beneficiary management endpoints.
func RegisterBeneficiaryRoutes(r fiber.Router, h *beneficiary.Handler) {
	r.Post("/users/:userId/beneficiaries", h.Add)
	r.Get("/users/:userId/beneficiaries", h.List)
	r.Get("/users/:userId/beneficiaries/:beneficiaryId", h.Get)
	r.Patch("/users/:userId/beneficiaries/:beneficiaryId", h.Update)
	r.Delete("/users/:userId/beneficiaries/:beneficiaryId", h.Remove)
}
