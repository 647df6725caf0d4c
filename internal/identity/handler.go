package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes HTTP endpoints for user registration and profiles.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
	PIN     string `json:"pin"`
}

type userResponse struct {
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Country       string    `json:"country"`
	Phone         string    `json:"phone"`
	TotalSent     int64     `json:"total_sent"`
	TotalReceived int64     `json:"total_received"`
	CreatedAt     time.Time `json:"created_at"`
}

// Register creates a new user account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Register(c.UserContext(), Registration{
		Name:    req.Name,
		Country: req.Country,
		Phone:   req.Phone,
		PIN:     req.PIN,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyRegistered):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(toUserResponse(user))
}

// Get returns a user's profile including lifetime transfer stats.
func (h *Handler) Get(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), c.Params("userId"))
	if err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(toUserResponse(user))
}

func toUserResponse(user User) userResponse {
	return userResponse{
		UserID:        user.ID,
		Name:          user.Name,
		Country:       user.Country,
		Phone:         user.Phone,
		TotalSent:     user.TotalSent,
		TotalReceived: user.TotalReceived,
		CreatedAt:     user.CreatedAt,
	}
}
