package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/ledger"
)

// RegisterLedgerRoutes wires deposit, withdrawal and balance endpoints.
func RegisterLedgerRoutes(r fiber.Router, h *ledger.Handler) {
	r.Post("/users/:userId/deposits", h.Deposit)
	r.Post("/users/:userId/withdrawals", h.Withdraw)
	r.Get("/users/:userId/balances/:assetId", h.Balance)
}
