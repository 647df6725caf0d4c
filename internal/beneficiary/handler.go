package beneficiary

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/identity"
)

// Handler exposes HTTP endpoints for managing saved payment targets.
type Handler struct {
	service *Service
}

// NewHandler constructs a beneficiary handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addRequest struct {
	Target       string `json:"target"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Amount       int64  `json:"amount"`
	Asset        string `json:"asset"`
	Cadence      string `json:"cadence"`
}

type updateRequest struct {
	Target       *string `json:"target"`
	Name         *string `json:"name"`
	Relationship *string `json:"relationship"`
	Amount       *int64  `json:"amount"`
	Asset        *string `json:"asset"`
	Cadence      *string `json:"cadence"`
}

type beneficiaryResponse struct {
	ID           string     `json:"id"`
	Target       string     `json:"target"`
	Name         string     `json:"name"`
	Relationship string     `json:"relationship"`
	Amount       int64      `json:"amount"`
	Asset        string     `json:"asset"`
	Cadence      string     `json:"cadence"`
	LastPaidAt   *time.Time `json:"last_paid_at,omitempty"`
	NextRunAt    *time.Time `json:"next_run_at,omitempty"`
	TotalSent    int64      `json:"total_sent"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Add registers a new beneficiary for the user.
func (h *Handler) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	b, err := h.service.Add(c.UserContext(), AddInput{
		OwnerID:      c.Params("userId"),
		Target:       req.Target,
		Name:         req.Name,
		Relationship: req.Relationship,
		Amount:       req.Amount,
		Asset:        req.Asset,
		Cadence:      Cadence(req.Cadence),
	})
	if err != nil {
		return mapBeneficiaryError(err)
	}

	return c.Status(http.StatusCreated).JSON(toResponse(b, time.Now().UTC()))
}

// Update changes a beneficiary's amount, asset, cadence or metadata. Absent
// fields keep their current values.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	input := UpdateInput{
		Amount:       req.Amount,
		Asset:        req.Asset,
		Name:         req.Name,
		Relationship: req.Relationship,
		Target:       req.Target,
	}
	if req.Cadence != nil {
		cadence := Cadence(*req.Cadence)
		input.Cadence = &cadence
	}

	b, err := h.service.Update(c.UserContext(), c.Params("userId"), c.Params("beneficiaryId"), input)
	if err != nil {
		return mapBeneficiaryError(err)
	}

	return c.JSON(toResponse(b, time.Now().UTC()))
}

// Remove deactivates a beneficiary.
func (h *Handler) Remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), c.Params("userId"), c.Params("beneficiaryId")); err != nil {
		return mapBeneficiaryError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// List returns the user's active beneficiaries.
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), c.Params("userId"))
	if err != nil {
		return mapBeneficiaryError(err)
	}

	now := time.Now().UTC()
	out := make([]beneficiaryResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toResponse(b, now))
	}
	return c.JSON(fiber.Map{"beneficiaries": out})
}

// Get returns a single beneficiary.
func (h *Handler) Get(c *fiber.Ctx) error {
	b, err := h.service.Get(c.UserContext(), c.Params("userId"), c.Params("beneficiaryId"))
	if err != nil {
		return mapBeneficiaryError(err)
	}
	return c.JSON(toResponse(b, time.Now().UTC()))
}

func mapBeneficiaryError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrNotRegistered):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, asset.ErrUnsupported):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidCadence):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}

func toResponse(b Beneficiary, now time.Time) beneficiaryResponse {
	resp := beneficiaryResponse{
		ID:           b.ID,
		Target:       b.Target,
		Name:         b.Name,
		Relationship: b.Relationship,
		Amount:       b.Amount,
		Asset:        b.Asset,
		Cadence:      string(b.Cadence),
		LastPaidAt:   b.LastPaidAt,
		TotalSent:    b.TotalSent,
		CreatedAt:    b.CreatedAt,
	}
	if _, ok := b.Cadence.Interval(); ok {
		next := b.NextRunAt(now)
		resp.NextRunAt = &next
	}
	return resp
}
