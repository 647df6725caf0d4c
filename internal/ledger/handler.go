package ledger

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/custodian"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/platform"
)

// Handler exposes HTTP endpoints for deposits, withdrawals and balances.
type Handler struct {
	service *Service
}

// NewHandler constructs a ledger handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type moveFundsRequest struct {
	Asset  string `json:"asset"`
	Amount int64  `json:"amount"`
}

type balanceResponse struct {
	UserID  string `json:"user_id"`
	Asset   string `json:"asset"`
	Balance int64  `json:"balance"`
}

// Deposit credits custodied funds into a user's balance.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	userID := c.Params("userId")
	var req moveFundsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	balance, err := h.service.Deposit(c.UserContext(), userID, req.Asset, req.Amount)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.Status(http.StatusCreated).JSON(balanceResponse{UserID: userID, Asset: req.Asset, Balance: balance})
}

// Withdraw releases funds from a user's balance back to the custodian.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	userID := c.Params("userId")
	var req moveFundsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	balance, err := h.service.Withdraw(c.UserContext(), userID, req.Asset, req.Amount)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.Status(http.StatusCreated).JSON(balanceResponse{UserID: userID, Asset: req.Asset, Balance: balance})
}

// Balance reads a user's balance for one asset.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID := c.Params("userId")
	assetID := c.Params("assetId")

	balance, err := h.service.Balance(c.UserContext(), userID, assetID)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.JSON(balanceResponse{UserID: userID, Asset: assetID, Balance: balance})
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, identity.ErrNotRegistered):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, asset.ErrUnsupported):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInsufficientBalance):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, platform.ErrPaused):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, custodian.ErrTransferFailed):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
