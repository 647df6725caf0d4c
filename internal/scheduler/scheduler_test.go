package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/beneficiary"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/ledger"
	"github.com/remitpay/remitpay/internal/limits"
	"github.com/remitpay/remitpay/internal/logging"
	"github.com/remitpay/remitpay/internal/payment"
	"github.com/remitpay/remitpay/internal/platform"
)

type env struct {
	sched         *Scheduler
	users         identity.Repository
	idSvc         *identity.Service
	beneficiaries *beneficiary.Service
	payments      *payment.Service
	book          ledger.Ledger
	clock         *clockwork.FakeClock
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := identity.NewMemoryRepository()
	registry := asset.NewMemoryRegistry("USDC")
	book := ledger.NewInMemory()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	benRepo := beneficiary.NewMemoryRepository()
	pf, err := platform.New("admin", "treasury:main", platform.DefaultFeeBps)
	if err != nil {
		t.Fatalf("new platform: %v", err)
	}

	payments := payment.NewService(payment.Config{
		Book:          book,
		Users:         users,
		Beneficiaries: benRepo,
		Assets:        registry,
		Platform:      pf,
		Guard:         limits.NewGuard(clock),
		History:       payment.NewMemoryRepository(),
		Clock:         clock,
		Logger:        logging.Discard(),
	})

	sched, err := New(users, benRepo, payments, time.Minute, clock, logging.Discard())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	return &env{
		sched:         sched,
		users:         users,
		idSvc:         identity.NewService(users, nil),
		beneficiaries: beneficiary.NewService(benRepo, users, registry, nil),
		payments:      payments,
		book:          book,
		clock:         clock,
	}
}

func (e *env) seedUser(t *testing.T, phone string, balance int64) identity.User {
	t.Helper()
	user, err := e.idSvc.Register(context.Background(), identity.Registration{Name: "u", Country: "CG", Phone: phone, PIN: "1234"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if balance > 0 {
		ledger.SeedBalance(e.book, user.AccountCode(), "USDC", balance)
	}
	return user
}

func TestCollectSkipsManualCadence(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.seedUser(t, "+2420001", 10_000)

	auto, err := e.beneficiaries.Add(ctx, beneficiary.AddInput{
		OwnerID: owner.ID, Target: "ext:a", Name: "a", Amount: 100, Asset: "USDC", Cadence: beneficiary.CadenceDaily,
	})
	if err != nil {
		t.Fatalf("add auto: %v", err)
	}
	if _, err := e.beneficiaries.Add(ctx, beneficiary.AddInput{
		OwnerID: owner.ID, Target: "ext:b", Name: "b", Amount: 100, Asset: "USDC", Cadence: beneficiary.CadenceManual,
	}); err != nil {
		t.Fatalf("add manual: %v", err)
	}

	entries, err := e.sched.collect(ctx)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(entries) != 1 || entries[0].BeneficiaryID != auto.ID {
		t.Fatalf("expected only the auto beneficiary, got %+v", entries)
	}
}

func TestSweepExecutesDuePayouts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.seedUser(t, "+2420001", 10_000)

	ben, err := e.beneficiaries.Add(ctx, beneficiary.AddInput{
		OwnerID: owner.ID, Target: "ext:a", Name: "a", Amount: 1_000, Asset: "USDC", Cadence: beneficiary.CadenceDaily,
	})
	if err != nil {
		t.Fatalf("add beneficiary: %v", err)
	}

	e.sched.sweep()

	balance, _ := e.book.Balance(ctx, owner.AccountCode(), "USDC")
	if balance != 9_000 {
		t.Fatalf("sweep did not execute payout, balance=%d", balance)
	}

	// A second sweep inside the cadence window is a no-op.
	e.sched.sweep()
	balance, _ = e.book.Balance(ctx, owner.AccountCode(), "USDC")
	if balance != 9_000 {
		t.Fatalf("sweep re-executed a locked payout, balance=%d", balance)
	}

	// Past the cadence window the payout runs again.
	e.clock.Advance(25 * time.Hour)
	e.sched.sweep()
	balance, _ = e.book.Balance(ctx, owner.AccountCode(), "USDC")
	if balance != 8_000 {
		t.Fatalf("sweep skipped a due payout, balance=%d", balance)
	}

	updated, err := e.beneficiaries.Get(ctx, owner.ID, ben.ID)
	if err != nil {
		t.Fatalf("get beneficiary: %v", err)
	}
	if updated.TotalSent != 2_000 {
		t.Fatalf("beneficiary total sent %d, want 2000", updated.TotalSent)
	}
}

func TestSweepContinuesPastUnfundedUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	broke := e.seedUser(t, "+2420001", 0)
	funded := e.seedUser(t, "+2420002", 10_000)

	for _, owner := range []identity.User{broke, funded} {
		if _, err := e.beneficiaries.Add(ctx, beneficiary.AddInput{
			OwnerID: owner.ID, Target: "ext:a", Name: "a", Amount: 1_000, Asset: "USDC", Cadence: beneficiary.CadenceDaily,
		}); err != nil {
			t.Fatalf("add beneficiary: %v", err)
		}
	}

	e.sched.sweep()

	fundedBal, _ := e.book.Balance(ctx, funded.AccountCode(), "USDC")
	if fundedBal != 9_000 {
		t.Fatalf("funded user's payout should run despite earlier failure, balance=%d", fundedBal)
	}
}
