package payment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/beneficiary"
	"github.com/remitpay/remitpay/internal/custodian"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/ledger"
	"github.com/remitpay/remitpay/internal/limits"
	"github.com/remitpay/remitpay/internal/platform"
)

// Handler exposes HTTP endpoints for sending payments and reading history.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	Asset     string `json:"asset"`
	Amount    int64  `json:"amount"`
	Note      string `json:"note"`
}

type recordResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	SenderID      string    `json:"sender_id"`
	BeneficiaryID string    `json:"beneficiary_id,omitempty"`
	Recipient     string    `json:"recipient"`
	Asset         string    `json:"asset"`
	Gross         int64     `json:"gross"`
	Fee           int64     `json:"fee"`
	Note          string    `json:"note,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Send executes a one-off payment from the user to an internal user or an
// external target.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	record, err := h.service.SendManual(c.UserContext(), SendInput{
		SenderID:  c.Params("userId"),
		Recipient: req.Recipient,
		Asset:     req.Asset,
		Amount:    req.Amount,
		Note:      req.Note,
	})
	if err != nil {
		return mapPaymentError(err)
	}

	return c.Status(http.StatusCreated).JSON(toRecordResponse(record))
}

// ExecuteScheduled triggers one beneficiary's recurring payment, subject to
// its cadence lock.
func (h *Handler) ExecuteScheduled(c *fiber.Ctx) error {
	record, err := h.service.ExecuteScheduled(c.UserContext(), c.Params("userId"), c.Params("beneficiaryId"))
	if err != nil {
		return mapPaymentError(err)
	}

	return c.Status(http.StatusCreated).JSON(toRecordResponse(record))
}

// History lists the user's most recent payment records.
func (h *Handler) History(c *fiber.Ctx) error {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return fiber.NewError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	records, err := h.service.History(c.UserContext(), c.Params("userId"), limit)
	if err != nil {
		return mapPaymentError(err)
	}

	out := make([]recordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordResponse(r))
	}
	return c.JSON(fiber.Map{"payments": out})
}

// GetRecord returns a single payment record by identifier.
func (h *Handler) GetRecord(c *fiber.Ctx) error {
	record, err := h.service.GetRecord(c.UserContext(), c.Params("paymentId"))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return mapPaymentError(err)
	}
	return c.JSON(toRecordResponse(record))
}

// Pending lists the user's beneficiaries that are due and covered by the
// current balance.
func (h *Handler) Pending(c *fiber.Ctx) error {
	pending, err := h.service.PendingBeneficiaries(c.UserContext(), c.Params("userId"))
	if err != nil {
		return mapPaymentError(err)
	}

	type pendingItem struct {
		BeneficiaryID string `json:"beneficiary_id"`
		Name          string `json:"name"`
		Target        string `json:"target"`
		Asset         string `json:"asset"`
		Amount        int64  `json:"amount"`
	}
	out := make([]pendingItem, 0, len(pending))
	for _, b := range pending {
		out = append(out, pendingItem{
			BeneficiaryID: b.ID,
			Name:          b.Name,
			Target:        b.Target,
			Asset:         b.Asset,
			Amount:        b.Amount,
		})
	}
	return c.JSON(fiber.Map{"pending": out})
}

func mapPaymentError(err error) error {
	switch {
	case errors.Is(err, ErrFrequencyLocked):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, beneficiary.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrNotRegistered):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, asset.ErrUnsupported):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, limits.ErrDailyLimitExceeded):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, platform.ErrPaused):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, custodian.ErrTransferFailed):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}

func toRecordResponse(r Record) recordResponse {
	return recordResponse{
		ID:            r.ID,
		Kind:          string(r.Kind),
		Status:        string(r.Status),
		SenderID:      r.SenderID,
		BeneficiaryID: r.BeneficiaryID,
		Recipient:     r.Recipient,
		Asset:         r.Asset,
		Gross:         r.Gross,
		Fee:           r.Fee,
		Note:          r.Note,
		Reason:        r.Reason,
		CreatedAt:     r.CreatedAt,
	}
}
