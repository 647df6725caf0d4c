package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/beneficiary"
	"github.com/remitpay/remitpay/internal/custodian"
	"github.com/remitpay/remitpay/internal/fee"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/ledger"
	"github.com/remitpay/remitpay/internal/limits"
	"github.com/remitpay/remitpay/internal/notification"
	"github.com/remitpay/remitpay/internal/platform"
)

// Config aggregates the collaborators the payment engine drives.
type Config struct {
	Book          ledger.Ledger
	Users         identity.Repository
	Beneficiaries beneficiary.Repository
	Assets        asset.Registry
	Platform      *platform.Platform
	Guard         *limits.Guard
	Custodian     custodian.Custodian
	History       Repository
	Emitter       notification.Emitter
	Clock         clockwork.Clock
	Logger        *slog.Logger
}

// Service executes manual and scheduled payments: limit check, fee split,
// ledger postings, external settlement, history and frequency-lock state.
type Service struct {
	cfg Config
}

// NewService builds a payment service instance.
func NewService(cfg Config) *Service {
	if cfg.Custodian == nil {
		cfg.Custodian = custodian.Static{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Service{cfg: cfg}
}

// SendInput captures a manual payment request. Recipient may be another
// registered user's identifier (settled internally) or an external
// destination (settled through the custodian).
type SendInput struct {
	SenderID  string
	Recipient string
	Asset     string
	Amount    int64
	Note      string
}

// SendManual executes a one-off payment. Cadence checks do not apply, but the
// daily limit, fee computation and balance verification all do. A record is
// appended whether the attempt succeeds or fails.
func (s *Service) SendManual(ctx context.Context, input SendInput) (Record, error) {
	record := Record{
		ID:        uuid.New().String(),
		Kind:      KindManual,
		SenderID:  input.SenderID,
		Recipient: input.Recipient,
		Asset:     input.Asset,
		Gross:     input.Amount,
		Note:      input.Note,
		CreatedAt: s.cfg.Clock.Now().UTC(),
	}

	feeAmount, recipientUserID, err := s.settle(ctx, input.SenderID, input.Recipient, input.Asset, input.Amount)
	record.Fee = feeAmount
	if err != nil {
		return s.finishFailed(ctx, record, err)
	}
	return s.finishSucceeded(ctx, record, recipientUserID, feeAmount)
}

// ExecuteScheduled runs one cadence-based payment if it is due. A not-yet-due
// beneficiary yields ErrFrequencyLocked and no state change (including no
// history record), so the payment stays eligible next cycle. A due attempt
// that fails appends a failure record and leaves the frequency lock open.
func (s *Service) ExecuteScheduled(ctx context.Context, ownerID, beneficiaryID string) (Record, error) {
	now := s.cfg.Clock.Now().UTC()

	b, err := s.cfg.Beneficiaries.Get(ctx, ownerID, beneficiaryID)
	if err != nil {
		return Record{}, err
	}
	if !b.Due(now) {
		return Record{}, ErrFrequencyLocked
	}

	record := Record{
		ID:            uuid.New().String(),
		Kind:          KindScheduled,
		SenderID:      ownerID,
		BeneficiaryID: b.ID,
		Recipient:     b.Target,
		Asset:         b.Asset,
		Gross:         b.Amount,
		CreatedAt:     now,
	}

	feeAmount, recipientUserID, err := s.settle(ctx, ownerID, b.Target, b.Asset, b.Amount)
	record.Fee = feeAmount
	if err != nil {
		return s.finishFailed(ctx, record, err)
	}

	// Advance the frequency lock to the execution time, not the due time.
	b.LastPaidAt = &now
	b.TotalSent += b.Amount
	if err := s.cfg.Beneficiaries.Update(ctx, b); err != nil {
		s.cfg.Logger.Error("frequency lock not advanced after settled payment",
			slog.String("beneficiary_id", b.ID), slog.Any("error", err))
	}

	return s.finishSucceeded(ctx, record, recipientUserID, feeAmount)
}

// RunBatch attempts every entry in order. Each entry is its own atomic unit:
// one failure neither aborts the batch nor unwinds earlier successes.
func (s *Service) RunBatch(ctx context.Context, entries []BatchEntry) []BatchResult {
	results := make([]BatchResult, 0, len(entries))
	for _, entry := range entries {
		record, err := s.ExecuteScheduled(ctx, entry.UserID, entry.BeneficiaryID)
		switch {
		case err == nil:
			results = append(results, BatchResult{Entry: entry, Status: BatchSuccess, RecordID: record.ID})
		case errors.Is(err, ErrFrequencyLocked):
			results = append(results, BatchResult{Entry: entry, Status: BatchSkipped, Reason: err.Error()})
		default:
			results = append(results, BatchResult{Entry: entry, Status: BatchFailed, RecordID: record.ID, Reason: err.Error()})
		}
	}
	return results
}

// PendingBeneficiaries lists the owner's due beneficiaries whose balance can
// cover the configured amount.
func (s *Service) PendingBeneficiaries(ctx context.Context, ownerID string) ([]beneficiary.Beneficiary, error) {
	user, err := s.cfg.Users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	all, err := s.cfg.Beneficiaries.ListActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.cfg.Clock.Now().UTC()
	var pending []beneficiary.Beneficiary
	for _, b := range all {
		if !b.Due(now) {
			continue
		}
		balance, err := s.cfg.Book.Balance(ctx, user.AccountCode(), b.Asset)
		if err != nil {
			return nil, err
		}
		if balance >= b.Amount {
			pending = append(pending, b)
		}
	}
	return pending, nil
}

// History returns the sender's most recent payment records.
func (s *Service) History(ctx context.Context, senderID string, limit int) ([]Record, error) {
	return s.cfg.History.ListBySender(ctx, senderID, limit)
}

// GetRecord fetches a single payment record.
func (s *Service) GetRecord(ctx context.Context, id string) (Record, error) {
	return s.cfg.History.Get(ctx, id)
}

// CountRecords returns the total number of payment attempts on record.
func (s *Service) CountRecords(ctx context.Context) (int64, error) {
	return s.cfg.History.Count(ctx)
}

// settle runs the full payment path for a gross amount: pause gate, sender
// check, limit check, fee split, sender debit, treasury credit, net
// settlement. Internal state changes are committed before the external
// custodian call; a failed external settlement reverses them. Returns the fee
// taken and, when the recipient is a registered user, that user's id.
func (s *Service) settle(ctx context.Context, senderID, recipient, assetID string, amount int64) (int64, string, error) {
	snap := s.cfg.Platform.Snapshot()
	if snap.Paused {
		return 0, "", platform.ErrPaused
	}

	sender, err := s.cfg.Users.FindByID(ctx, senderID)
	if err != nil {
		return 0, "", identity.ErrNotRegistered
	}
	if amount <= 0 {
		return 0, "", ledger.ErrZeroAmount
	}
	if err := asset.Require(ctx, s.cfg.Assets, assetID); err != nil {
		return 0, "", err
	}
	if err := s.cfg.Guard.Allow(sender.ID, assetID, amount); err != nil {
		return 0, "", err
	}

	net, feeAmount, err := fee.Split(amount, snap.FeeBps)
	if err != nil {
		return 0, "", ledger.ErrOverflow
	}

	if _, err := s.cfg.Book.Debit(ctx, sender.AccountCode(), assetID, amount); err != nil {
		return 0, "", err
	}
	if feeAmount > 0 {
		if _, err := s.cfg.Book.Credit(ctx, snap.Treasury, assetID, feeAmount); err != nil {
			s.reverse(ctx, sender.AccountCode(), "", assetID, amount, 0)
			return 0, "", err
		}
	}

	recipientUser, lookupErr := s.cfg.Users.FindByID(ctx, recipient)
	if lookupErr == nil {
		if _, err := s.cfg.Book.Credit(ctx, recipientUser.AccountCode(), assetID, net); err != nil {
			s.reverse(ctx, sender.AccountCode(), snap.Treasury, assetID, amount, feeAmount)
			return 0, "", err
		}
	} else {
		if _, err := s.cfg.Custodian.Release(ctx, recipient, assetID, net); err != nil {
			s.reverse(ctx, sender.AccountCode(), snap.Treasury, assetID, amount, feeAmount)
			return 0, "", fmt.Errorf("%w: %v", custodian.ErrTransferFailed, err)
		}
	}

	// Only a fully settled payment consumes limit.
	s.cfg.Guard.Commit(sender.ID, assetID, amount)

	if err := s.cfg.Users.AddSent(ctx, sender.ID, amount); err != nil {
		s.cfg.Logger.Warn("sender stats not updated", slog.String("user_id", sender.ID), slog.Any("error", err))
	}
	if lookupErr == nil {
		if err := s.cfg.Users.AddReceived(ctx, recipientUser.ID, net); err != nil {
			s.cfg.Logger.Warn("recipient stats not updated", slog.String("user_id", recipientUser.ID), slog.Any("error", err))
		}
		return feeAmount, recipientUser.ID, nil
	}
	return feeAmount, "", nil
}

// reverse undoes the sender debit and, when taken, the treasury fee credit
// after a failed settlement.
func (s *Service) reverse(ctx context.Context, senderCode, treasury, assetID string, amount, feeAmount int64) {
	if feeAmount > 0 && treasury != "" {
		if _, err := s.cfg.Book.Debit(ctx, treasury, assetID, feeAmount); err != nil {
			s.cfg.Logger.Error("fee reversal failed", slog.String("treasury", treasury), slog.Any("error", err))
		}
	}
	if _, err := s.cfg.Book.Credit(ctx, senderCode, assetID, amount); err != nil {
		s.cfg.Logger.Error("debit reversal failed", slog.String("account", senderCode), slog.Any("error", err))
	}
}

func (s *Service) finishSucceeded(ctx context.Context, record Record, recipientUserID string, feeAmount int64) (Record, error) {
	record.Status = StatusSuccess
	if err := s.cfg.History.Append(ctx, record); err != nil {
		s.cfg.Logger.Error("payment record not persisted", slog.String("record_id", record.ID), slog.Any("error", err))
	}

	meta := map[string]string{"kind": string(record.Kind)}
	if recipientUserID != "" {
		meta["recipient_user_id"] = recipientUserID
	}
	notification.EmitBestEffort(ctx, s.cfg.Emitter, notification.Event{
		Kind:    notification.KindPaymentSent,
		Actor:   record.SenderID,
		Subject: record.Recipient,
		Asset:   record.Asset,
		Amount:  record.Gross,
		Fee:     feeAmount,
		Meta:    meta,
	})
	return record, nil
}

func (s *Service) finishFailed(ctx context.Context, record Record, cause error) (Record, error) {
	record.Status = StatusFailed
	record.Reason = cause.Error()
	if err := s.cfg.History.Append(ctx, record); err != nil {
		s.cfg.Logger.Error("payment record not persisted", slog.String("record_id", record.ID), slog.Any("error", err))
	}

	notification.EmitBestEffort(ctx, s.cfg.Emitter, notification.Event{
		Kind:    notification.KindPaymentFailed,
		Actor:   record.SenderID,
		Subject: record.Recipient,
		Asset:   record.Asset,
		Amount:  record.Gross,
		Meta:    map[string]string{"kind": string(record.Kind), "reason": record.Reason},
	})
	return record, cause
}
