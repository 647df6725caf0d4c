package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/remitpay/remitpay/internal/beneficiary"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/payment"
)

// Scheduler drives recurring beneficiary payouts. On each tick it sweeps
// every registered user's active beneficiaries and hands the due ones to the
// payment engine as one batch.
type Scheduler struct {
	users         identity.Repository
	beneficiaries beneficiary.Repository
	payments      *payment.Service
	interval      time.Duration
	logger        *slog.Logger

	runner gocron.Scheduler
}

func New(users identity.Repository, beneficiaries beneficiary.Repository, payments *payment.Service, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive")
	}

	runner, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		users:         users,
		beneficiaries: beneficiaries,
		payments:      payments,
		interval:      interval,
		logger:        logger,
		runner:        runner,
	}

	if _, err := runner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("register payout job: %w", err)
	}

	return s, nil
}

// Start begins the payout sweep loop.
func (s *Scheduler) Start() {
	s.runner.Start()
	s.logger.Info("payout scheduler started", slog.Duration("interval", s.interval))
}

// Stop drains running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	return s.runner.Shutdown()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	entries, err := s.collect(ctx)
	if err != nil {
		s.logger.Error("payout sweep aborted", slog.Any("error", err))
		return
	}
	if len(entries) == 0 {
		return
	}

	results := s.payments.RunBatch(ctx, entries)

	var succeeded, skipped, failed int
	for _, r := range results {
		switch r.Status {
		case payment.BatchSuccess:
			succeeded++
		case payment.BatchSkipped:
			skipped++
		case payment.BatchFailed:
			failed++
			s.logger.Warn("scheduled payout failed",
				slog.String("user_id", r.Entry.UserID),
				slog.String("beneficiary_id", r.Entry.BeneficiaryID),
				slog.String("reason", r.Reason),
			)
		}
	}

	s.logger.Info("payout sweep finished",
		slog.Int("entries", len(entries)),
		slog.Int("succeeded", succeeded),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
	)
}

// collect gathers every active non-manual beneficiary across all users. The
// payment engine re-checks due-ness per entry, so a stale view here only
// costs a skip.
func (s *Scheduler) collect(ctx context.Context) ([]payment.BatchEntry, error) {
	userIDs, err := s.users.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var entries []payment.BatchEntry
	for _, userID := range userIDs {
		active, err := s.beneficiaries.ListActive(ctx, userID)
		if err != nil {
			s.logger.Warn("skipping user in payout sweep", slog.String("user_id", userID), slog.Any("error", err))
			continue
		}
		for _, b := range active {
			if b.Cadence == beneficiary.CadenceManual {
				continue
			}
			entries = append(entries, payment.BatchEntry{UserID: userID, BeneficiaryID: b.ID})
		}
	}

	return entries, nil
}
