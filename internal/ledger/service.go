package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/custodian"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/notification"
	"github.com/remitpay/remitpay/internal/platform"
)

// Service exposes deposit, withdrawal and emergency operations on top of the
// balance book, coordinating the external asset custodian.
type Service struct {
	book      Ledger
	assets    asset.Registry
	custodian custodian.Custodian
	users     identity.Repository
	platform  *platform.Platform
	emitter   notification.Emitter
	logger    *slog.Logger
}

// NewService builds a ledger service instance.
func NewService(book Ledger, assets asset.Registry, cust custodian.Custodian, users identity.Repository, pf *platform.Platform, emitter notification.Emitter, logger *slog.Logger) *Service {
	if cust == nil {
		cust = custodian.Static{}
	}
	return &Service{book: book, assets: assets, custodian: cust, users: users, platform: pf, emitter: emitter, logger: logger}
}

// Book returns the underlying balance book.
func (s *Service) Book() Ledger {
	return s.book
}

// Deposit pulls value from the user's external holdings into custody and
// credits the internal balance. The balance increase is applied only after
// the custodian confirms receipt.
func (s *Service) Deposit(ctx context.Context, userID, assetID string, amount int64) (int64, error) {
	snap := s.platform.Snapshot()
	if snap.Paused {
		return 0, platform.ErrPaused
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, ErrZeroAmount
	}
	if err := asset.Require(ctx, s.assets, assetID); err != nil {
		return 0, err
	}

	receipt, err := s.custodian.Credit(ctx, userID, assetID, amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", custodian.ErrTransferFailed, err)
	}

	balance, err := s.book.Credit(ctx, user.AccountCode(), assetID, amount)
	if err != nil {
		// Custody already holds the funds; surface the inconsistency loudly
		// rather than hiding it.
		s.logger.Error("deposit credited in custody but not in ledger",
			slog.String("user_id", userID), slog.String("asset", assetID),
			slog.String("custodian_ref", receipt.Reference), slog.Any("error", err))
		return 0, err
	}

	notification.EmitBestEffort(ctx, s.emitter, notification.Event{
		Kind:    notification.KindDeposit,
		Actor:   userID,
		Subject: userID,
		Asset:   assetID,
		Amount:  amount,
	})
	return balance, nil
}

// Withdraw debits the internal balance first, then instructs the custodian to
// release the funds. A failed release reverses the debit so the ledger stays
// consistent with actual holdings.
func (s *Service) Withdraw(ctx context.Context, userID, assetID string, amount int64) (int64, error) {
	snap := s.platform.Snapshot()
	if snap.Paused {
		return 0, platform.ErrPaused
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, ErrZeroAmount
	}
	if err := asset.Require(ctx, s.assets, assetID); err != nil {
		return 0, err
	}

	// Internal state commit precedes the external call.
	balance, err := s.book.Debit(ctx, user.AccountCode(), assetID, amount)
	if err != nil {
		return 0, err
	}

	if _, err := s.custodian.Release(ctx, userID, assetID, amount); err != nil {
		if _, revErr := s.book.Credit(ctx, user.AccountCode(), assetID, amount); revErr != nil {
			s.logger.Error("withdrawal reversal failed",
				slog.String("user_id", userID), slog.String("asset", assetID),
				slog.Int64("amount", amount), slog.Any("error", revErr))
		}
		return 0, fmt.Errorf("%w: %v", custodian.ErrTransferFailed, err)
	}

	notification.EmitBestEffort(ctx, s.emitter, notification.Event{
		Kind:    notification.KindWithdrawal,
		Actor:   userID,
		Subject: userID,
		Asset:   assetID,
		Amount:  amount,
	})
	return balance, nil
}

// Balance returns the user's internal balance for the asset.
func (s *Service) Balance(ctx context.Context, userID, assetID string) (int64, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.book.Balance(ctx, user.AccountCode(), assetID)
}

// EmergencyWithdraw moves custody-held funds directly to an admin-designated
// destination, bypassing user balances and limits. It remains available while
// paused; that is its purpose.
func (s *Service) EmergencyWithdraw(ctx context.Context, actor, assetID string, amount int64, destination string) error {
	if err := s.platform.Authorize(actor); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrZeroAmount
	}
	if _, err := s.custodian.Release(ctx, destination, assetID, amount); err != nil {
		return fmt.Errorf("%w: %v", custodian.ErrTransferFailed, err)
	}

	notification.EmitBestEffort(ctx, s.emitter, notification.Event{
		Kind:    notification.KindEmergencyWithdraw,
		Actor:   actor,
		Subject: destination,
		Asset:   assetID,
		Amount:  amount,
	})
	return nil
}
