package notification

import (
	"context"
	"log/slog"
)

// Event kinds, one per state-changing action.
const (
	KindUserRegistered     = "user_registered"
	KindDeposit            = "balance_deposited"
	KindWithdrawal         = "balance_withdrawn"
	KindBeneficiaryAdded   = "beneficiary_added"
	KindBeneficiaryUpdated = "beneficiary_updated"
	KindBeneficiaryRemoved = "beneficiary_removed"
	KindPaymentSent        = "payment_sent"
	KindPaymentFailed      = "payment_failed"
	KindFeeUpdated         = "fee_updated"
	KindTreasuryUpdated    = "treasury_updated"
	KindLimitSet           = "daily_limit_set"
	KindPaused             = "platform_paused"
	KindUnpaused           = "platform_unpaused"
	KindAssetAdded         = "asset_added"
	KindAssetRemoved       = "asset_removed"
	KindEmergencyWithdraw  = "emergency_withdrawal"
)

// Event describes a completed state-changing action.
type Event struct {
	Kind    string
	Actor   string
	Subject string
	Asset   string
	Amount  int64
	Fee     int64
	Meta    map[string]string
}

// Emitter delivers events to downstream systems.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// EmitBestEffort sends the event and swallows delivery failures; event
// emission never fails the underlying operation.
func EmitBestEffort(ctx context.Context, e Emitter, event Event) {
	if e == nil {
		return
	}
	_ = e.Emit(ctx, event)
}

// LogEmitter writes events to the structured logger.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter constructs a logging event emitter.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// Emit writes the event to the structured logger.
func (e *LogEmitter) Emit(_ context.Context, event Event) error {
	if e == nil || e.logger == nil {
		return nil
	}
	attrs := []any{
		slog.String("kind", event.Kind),
		slog.String("actor", event.Actor),
		slog.String("subject", event.Subject),
	}
	if event.Asset != "" {
		attrs = append(attrs, slog.String("asset", event.Asset))
	}
	if event.Amount != 0 {
		attrs = append(attrs, slog.Int64("amount", event.Amount))
	}
	if event.Fee != 0 {
		attrs = append(attrs, slog.Int64("fee", event.Fee))
	}
	for k, v := range event.Meta {
		attrs = append(attrs, slog.String(k, v))
	}
	e.logger.Info("event", attrs...)
	return nil
}
