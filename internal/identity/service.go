package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/remitpay/remitpay/internal/notification"
)

// Service manages the user lifecycle.
type Service struct {
	repo    Repository
	emitter notification.Emitter
}

// NewService creates a new identity service.
func NewService(repo Repository, emitter notification.Emitter) *Service {
	return &Service{repo: repo, emitter: emitter}
}

// Register creates a new user and stores a hashed PIN.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	if len(reg.PIN) < 4 {
		return User{}, errors.New("PIN must be at least 4 digits")
	}
	if reg.Phone == "" {
		return User{}, errors.New("phone number is required")
	}

	if _, err := s.repo.FindByPhone(ctx, reg.Phone); err == nil {
		return User{}, ErrAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.PIN), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:        uuid.New().String(),
		Name:      reg.Name,
		Country:   reg.Country,
		Phone:     reg.Phone,
		PINHash:   hash,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	notification.EmitBestEffort(ctx, s.emitter, notification.Event{
		Kind:    notification.KindUserRegistered,
		Actor:   user.ID,
		Subject: user.ID,
		Meta:    map[string]string{"country": user.Country},
	})

	return user, nil
}

// Get fetches a user profile by identifier.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// Require returns the user or ErrNotRegistered.
func (s *Service) Require(ctx context.Context, id string) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, ErrNotRegistered
	}
	return user, nil
}
