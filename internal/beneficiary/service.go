package beneficiary

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/ledger"
	"github.com/remitpay/remitpay/internal/notification"
)

// Service manages each user's registry of payment targets.
type Service struct {
	repo    Repository
	users   identity.Repository
	assets  asset.Registry
	emitter notification.Emitter
}

// NewService builds a beneficiary service instance.
func NewService(repo Repository, users identity.Repository, assets asset.Registry, emitter notification.Emitter) *Service {
	return &Service{repo: repo, users: users, assets: assets, emitter: emitter}
}

// AddInput captures data required to register a beneficiary.
type AddInput struct {
	OwnerID      string
	Target       string
	Name         string
	Relationship string
	Amount       int64
	Asset        string
	Cadence      Cadence
}

// Add registers a payment target for the owning user.
func (s *Service) Add(ctx context.Context, input AddInput) (Beneficiary, error) {
	if _, err := s.users.FindByID(ctx, input.OwnerID); err != nil {
		return Beneficiary{}, identity.ErrNotRegistered
	}
	if err := asset.Require(ctx, s.assets, input.Asset); err != nil {
		return Beneficiary{}, err
	}
	if input.Amount <= 0 {
		return Beneficiary{}, ledger.ErrZeroAmount
	}
	if !input.Cadence.Valid() {
		return Beneficiary{}, ErrInvalidCadence
	}

	b := Beneficiary{
		ID:           uuid.New().String(),
		OwnerID:      input.OwnerID,
		Target:       input.Target,
		Name:         input.Name,
		Relationship: input.Relationship,
		Amount:       input.Amount,
		Asset:        input.Asset,
		Cadence:      input.Cadence,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Beneficiary{}, err
	}

	notification.EmitBestEffort(ctx, s.emitter, notification.Event{
		Kind:    notification.KindBeneficiaryAdded,
		Actor:   input.OwnerID,
		Subject: b.ID,
		Asset:   b.Asset,
		Amount:  b.Amount,
	})
	return b, nil
}

// UpdateInput carries the mutable beneficiary fields. Nil fields are left
// unchanged; owner and identifier never change.
type UpdateInput struct {
	Amount       *int64
	Asset        *string
	Cadence      *Cadence
	Name         *string
	Relationship *string
	Target       *string
}

// Update changes amount, asset, cadence or display metadata.
func (s *Service) Update(ctx context.Context, ownerID, id string, input UpdateInput) (Beneficiary, error) {
	b, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Beneficiary{}, err
	}

	if input.Amount != nil {
		if *input.Amount <= 0 {
			return Beneficiary{}, ledger.ErrZeroAmount
		}
		b.Amount = *input.Amount
	}
	if input.Asset != nil {
		if err := asset.Require(ctx, s.assets, *input.Asset); err != nil {
			return Beneficiary{}, err
		}
		b.Asset = *input.Asset
	}
	if input.Cadence != nil {
		if !input.Cadence.Valid() {
			return Beneficiary{}, ErrInvalidCadence
		}
		b.Cadence = *input.Cadence
	}
	if input.Name != nil {
		b.Name = *input.Name
	}
	if input.Relationship != nil {
		b.Relationship = *input.Relationship
	}
	if input.Target != nil {
		b.Target = *input.Target
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return Beneficiary{}, err
	}

	notification.EmitBestEffort(ctx, s.emitter, notification.Event{
		Kind:    notification.KindBeneficiaryUpdated,
		Actor:   ownerID,
		Subject: b.ID,
		Asset:   b.Asset,
		Amount:  b.Amount,
	})
	return b, nil
}

// Remove soft-deletes the beneficiary; history stays queryable and balances
// are unaffected.
func (s *Service) Remove(ctx context.Context, ownerID, id string) error {
	b, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	b.Active = false
	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}

	notification.EmitBestEffort(ctx, s.emitter, notification.Event{
		Kind:    notification.KindBeneficiaryRemoved,
		Actor:   ownerID,
		Subject: id,
	})
	return nil
}

// List returns the owner's active beneficiaries.
func (s *Service) List(ctx context.Context, ownerID string) ([]Beneficiary, error) {
	return s.repo.ListActive(ctx, ownerID)
}

// Get fetches a single active beneficiary.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Beneficiary, error) {
	return s.repo.Get(ctx, ownerID, id)
}
