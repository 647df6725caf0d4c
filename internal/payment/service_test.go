package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/beneficiary"
	"github.com/remitpay/remitpay/internal/custodian"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/ledger"
	"github.com/remitpay/remitpay/internal/limits"
	"github.com/remitpay/remitpay/internal/logging"
	"github.com/remitpay/remitpay/internal/platform"
)

const treasuryCode = "treasury:main"

type fixture struct {
	svc           *Service
	users         identity.Repository
	idSvc         *identity.Service
	beneficiaries *beneficiary.Service
	book          ledger.Ledger
	guard         *limits.Guard
	platform      *platform.Platform
	clock         *clockwork.FakeClock
}

type failingCustodian struct{ fail bool }

func (c *failingCustodian) Credit(_ context.Context, _, _ string, _ int64) (custodian.Receipt, error) {
	return custodian.Receipt{Reference: "ref"}, nil
}

func (c *failingCustodian) Release(_ context.Context, _, _ string, _ int64) (custodian.Receipt, error) {
	if c.fail {
		return custodian.Receipt{}, errors.New("declined")
	}
	return custodian.Receipt{Reference: "ref"}, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := identity.NewMemoryRepository()
	idSvc := identity.NewService(users, nil)
	registry := asset.NewMemoryRegistry("USDC")
	book := ledger.NewInMemory()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	guard := limits.NewGuard(clock)
	pf, err := platform.New("admin", treasuryCode, platform.DefaultFeeBps)
	if err != nil {
		t.Fatalf("new platform: %v", err)
	}
	benRepo := beneficiary.NewMemoryRepository()

	svc := NewService(Config{
		Book:          book,
		Users:         users,
		Beneficiaries: benRepo,
		Assets:        registry,
		Platform:      pf,
		Guard:         guard,
		Custodian:     &failingCustodian{},
		History:       NewMemoryRepository(),
		Clock:         clock,
		Logger:        logging.Discard(),
	})

	return &fixture{
		svc:           svc,
		users:         users,
		idSvc:         idSvc,
		beneficiaries: beneficiary.NewService(benRepo, users, registry, nil),
		book:          book,
		guard:         guard,
		platform:      pf,
		clock:         clock,
	}
}

func (f *fixture) registerUser(t *testing.T, phone string, balance int64) identity.User {
	t.Helper()
	user, err := f.idSvc.Register(context.Background(), identity.Registration{Name: "u", Country: "CG", Phone: phone, PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if balance > 0 {
		ledger.SeedBalance(f.book, user.AccountCode(), "USDC", balance)
	}
	return user
}

func (f *fixture) addBeneficiary(t *testing.T, owner identity.User, amount int64, cadence beneficiary.Cadence) beneficiary.Beneficiary {
	t.Helper()
	b, err := f.beneficiaries.Add(context.Background(), beneficiary.AddInput{
		OwnerID: owner.ID, Target: "ext:" + owner.ID, Name: "Mom", Relationship: "family",
		Amount: amount, Asset: "USDC", Cadence: cadence,
	})
	if err != nil {
		t.Fatalf("add beneficiary: %v", err)
	}
	return b
}

func TestSendManualConservesValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sender := f.registerUser(t, "+2420001", 100_000)
	receiver := f.registerUser(t, "+2420002", 0)

	record, err := f.svc.SendManual(ctx, SendInput{SenderID: sender.ID, Recipient: receiver.ID, Asset: "USDC", Amount: 10_000, Note: "rent"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if record.Status != StatusSuccess {
		t.Fatalf("expected success record, got %+v", record)
	}
	if record.Fee != 50 { // 0.5% of 10000
		t.Fatalf("expected fee 50, got %d", record.Fee)
	}

	senderBal, _ := f.book.Balance(ctx, sender.AccountCode(), "USDC")
	receiverBal, _ := f.book.Balance(ctx, receiver.AccountCode(), "USDC")
	treasuryBal, _ := f.book.Balance(ctx, treasuryCode, "USDC")

	if senderBal != 90_000 {
		t.Fatalf("sender balance %d, want 90000", senderBal)
	}
	if receiverBal != 9_950 {
		t.Fatalf("receiver balance %d, want 9950", receiverBal)
	}
	if treasuryBal != 50 {
		t.Fatalf("treasury balance %d, want 50", treasuryBal)
	}
	if senderBal+receiverBal+treasuryBal != 100_000 {
		t.Fatal("total ledger value changed")
	}

	updatedSender, _ := f.users.FindByID(ctx, sender.ID)
	updatedReceiver, _ := f.users.FindByID(ctx, receiver.ID)
	if updatedSender.TotalSent != 10_000 || updatedReceiver.TotalReceived != 9_950 {
		t.Fatalf("stats not updated: sent=%d received=%d", updatedSender.TotalSent, updatedReceiver.TotalReceived)
	}
}

func TestSendManualFailureAppendsRecordWithoutStateChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sender := f.registerUser(t, "+2420001", 100)

	record, err := f.svc.SendManual(ctx, SendInput{SenderID: sender.ID, Recipient: "ext:dest", Asset: "USDC", Amount: 500})
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if record.Status != StatusFailed || record.Reason == "" {
		t.Fatalf("expected failure record, got %+v", record)
	}

	balance, _ := f.book.Balance(ctx, sender.AccountCode(), "USDC")
	if balance != 100 {
		t.Fatalf("failed send mutated balance: %d", balance)
	}

	history, _ := f.svc.History(ctx, sender.ID, 10)
	if len(history) != 1 || history[0].Status != StatusFailed {
		t.Fatalf("expected one failure record, got %+v", history)
	}
}

func TestSendManualExternalFailureReversesPostings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sender := f.registerUser(t, "+2420001", 10_000)

	cust := f.svc.cfg.Custodian.(*failingCustodian)
	cust.fail = true

	_, err := f.svc.SendManual(ctx, SendInput{SenderID: sender.ID, Recipient: "ext:dest", Asset: "USDC", Amount: 4_000})
	if !errors.Is(err, custodian.ErrTransferFailed) {
		t.Fatalf("expected external transfer failure, got %v", err)
	}

	senderBal, _ := f.book.Balance(ctx, sender.AccountCode(), "USDC")
	treasuryBal, _ := f.book.Balance(ctx, treasuryCode, "USDC")
	if senderBal != 10_000 || treasuryBal != 0 {
		t.Fatalf("failed settlement not reversed: sender=%d treasury=%d", senderBal, treasuryBal)
	}

	// Failed attempts do not consume daily limit.
	if got := f.guard.Spent(sender.ID, "USDC"); got != 0 {
		t.Fatalf("failed payment consumed limit: %d", got)
	}
}

func TestSendManualRespectsDailyLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sender := f.registerUser(t, "+2420001", 100_000)
	f.guard.SetLimit(sender.ID, 5_000)

	if _, err := f.svc.SendManual(ctx, SendInput{SenderID: sender.ID, Recipient: "ext:a", Asset: "USDC", Amount: 3_000}); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := f.svc.SendManual(ctx, SendInput{SenderID: sender.ID, Recipient: "ext:a", Asset: "USDC", Amount: 3_000}); !errors.Is(err, limits.ErrDailyLimitExceeded) {
		t.Fatalf("expected daily limit exceeded, got %v", err)
	}

	f.clock.Advance(25 * time.Hour)
	if _, err := f.svc.SendManual(ctx, SendInput{SenderID: sender.ID, Recipient: "ext:a", Asset: "USDC", Amount: 3_000}); err != nil {
		t.Fatalf("send after window reset: %v", err)
	}
}

func TestExecuteScheduledFrequencyLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.registerUser(t, "+2420001", 100_000)
	ben := f.addBeneficiary(t, owner, 1_000, beneficiary.CadenceWeekly)

	// Never paid: due immediately.
	record, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID)
	if err != nil {
		t.Fatalf("first execution: %v", err)
	}
	if record.Status != StatusSuccess {
		t.Fatalf("expected success, got %+v", record)
	}

	// Locked for the next 7 days.
	f.clock.Advance(6 * 24 * time.Hour)
	if _, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID); !errors.Is(err, ErrFrequencyLocked) {
		t.Fatalf("expected frequency lock at day 6, got %v", err)
	}

	f.clock.Advance(24 * time.Hour)
	before := f.clock.Now().UTC()
	if _, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID); err != nil {
		t.Fatalf("execution at day 7: %v", err)
	}

	// The lock advances to the execution time, not lastPaidAt + interval.
	updated, _ := f.beneficiaries.Get(ctx, owner.ID, ben.ID)
	if updated.LastPaidAt == nil || !updated.LastPaidAt.Equal(before) {
		t.Fatalf("lastPaidAt = %v, want execution time %v", updated.LastPaidAt, before)
	}
	if updated.TotalSent != 2_000 {
		t.Fatalf("beneficiary total sent %d, want 2000", updated.TotalSent)
	}
}

func TestExecuteScheduledManualNeverDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.registerUser(t, "+2420001", 100_000)
	ben := f.addBeneficiary(t, owner, 1_000, beneficiary.CadenceManual)

	if _, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID); !errors.Is(err, ErrFrequencyLocked) {
		t.Fatalf("manual beneficiary must never be auto-executed, got %v", err)
	}
}

func TestExecuteScheduledFailureKeepsEligibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.registerUser(t, "+2420001", 100) // cannot cover the payment
	ben := f.addBeneficiary(t, owner, 1_000, beneficiary.CadenceDaily)

	if _, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID); !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	// lastPaidAt unchanged: still eligible once funded.
	updated, _ := f.beneficiaries.Get(ctx, owner.ID, ben.ID)
	if updated.LastPaidAt != nil {
		t.Fatalf("failed execution advanced the lock: %v", updated.LastPaidAt)
	}

	ledger.SeedBalance(f.book, owner.AccountCode(), "USDC", 5_000)
	if _, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID); err != nil {
		t.Fatalf("retry after funding: %v", err)
	}
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.registerUser(t, "+2420001", 10_000)
	second := f.registerUser(t, "+2420002", 10) // will fail on balance
	third := f.registerUser(t, "+2420003", 10_000)

	b1 := f.addBeneficiary(t, first, 1_000, beneficiary.CadenceDaily)
	b2 := f.addBeneficiary(t, second, 1_000, beneficiary.CadenceDaily)
	b3 := f.addBeneficiary(t, third, 1_000, beneficiary.CadenceDaily)

	results := f.svc.RunBatch(ctx, []BatchEntry{
		{UserID: first.ID, BeneficiaryID: b1.ID},
		{UserID: second.ID, BeneficiaryID: b2.ID},
		{UserID: third.ID, BeneficiaryID: b3.ID},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Status != BatchSuccess || results[2].Status != BatchSuccess {
		t.Fatalf("outer entries should succeed: %+v", results)
	}
	if results[1].Status != BatchFailed || results[1].Reason != ledger.ErrInsufficientBalance.Error() {
		t.Fatalf("middle entry should fail on balance: %+v", results[1])
	}

	firstBal, _ := f.book.Balance(ctx, first.AccountCode(), "USDC")
	secondBal, _ := f.book.Balance(ctx, second.AccountCode(), "USDC")
	thirdBal, _ := f.book.Balance(ctx, third.AccountCode(), "USDC")
	if firstBal != 9_000 || thirdBal != 9_000 {
		t.Fatalf("successful entries not applied: %d, %d", firstBal, thirdBal)
	}
	if secondBal != 10 {
		t.Fatalf("failed entry mutated balance: %d", secondBal)
	}
}

func TestRunBatchSkipsNotDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.registerUser(t, "+2420001", 100_000)
	ben := f.addBeneficiary(t, owner, 1_000, beneficiary.CadenceWeekly)

	if _, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID); err != nil {
		t.Fatalf("first execution: %v", err)
	}

	results := f.svc.RunBatch(ctx, []BatchEntry{{UserID: owner.ID, BeneficiaryID: ben.ID}})
	if results[0].Status != BatchSkipped {
		t.Fatalf("expected skipped, got %+v", results[0])
	}

	// Skips leave no history record behind.
	history, _ := f.svc.History(ctx, owner.ID, 10)
	if len(history) != 1 {
		t.Fatalf("skip must not append a record, history=%d", len(history))
	}
}

func TestScheduledPaymentWhilePausedFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.registerUser(t, "+2420001", 100_000)
	ben := f.addBeneficiary(t, owner, 1_000, beneficiary.CadenceDaily)

	if err := f.platform.Pause("admin"); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID); !errors.Is(err, platform.ErrPaused) {
		t.Fatalf("expected paused, got %v", err)
	}
	if _, err := f.svc.SendManual(ctx, SendInput{SenderID: owner.ID, Recipient: "ext:a", Asset: "USDC", Amount: 100}); !errors.Is(err, platform.ErrPaused) {
		t.Fatalf("expected paused on manual send, got %v", err)
	}

	if err := f.platform.Unpause("admin"); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if _, err := f.svc.ExecuteScheduled(ctx, owner.ID, ben.ID); err != nil {
		t.Fatalf("execution after unpause: %v", err)
	}
}

func TestPendingBeneficiaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.registerUser(t, "+2420001", 1_500)

	due := f.addBeneficiary(t, owner, 1_000, beneficiary.CadenceDaily)
	f.addBeneficiary(t, owner, 5_000, beneficiary.CadenceDaily) // unfunded
	f.addBeneficiary(t, owner, 100, beneficiary.CadenceManual)  // never due

	pending, err := f.svc.PendingBeneficiaries(ctx, owner.ID)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != due.ID {
		t.Fatalf("expected only the funded due beneficiary, got %+v", pending)
	}
}
