package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/payment"
)

// RegisterPaymentRoutes wires payment execution and history endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payment.Handler) {
	r.Post("/users/:userId/payments", h.Send)
	r.Post("/users/:userId/beneficiaries/:beneficiaryId/execute", h.ExecuteScheduled)
	r.Get("/users/:userId/payments", h.History)
	r.Get("/users/:userId/payments/pending", h.Pending)
	r.Get("/payments/:paymentId", h.GetRecord)
}
