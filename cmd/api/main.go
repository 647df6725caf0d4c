package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/remitpay/remitpay/internal/asset"
	"github.com/remitpay/remitpay/internal/beneficiary"
	"github.com/remitpay/remitpay/internal/config"
	"github.com/remitpay/remitpay/internal/custodian"
	"github.com/remitpay/remitpay/internal/identity"
	"github.com/remitpay/remitpay/internal/infra"
	"github.com/remitpay/remitpay/internal/ledger"
	"github.com/remitpay/remitpay/internal/limits"
	"github.com/remitpay/remitpay/internal/logging"
	"github.com/remitpay/remitpay/internal/notification"
	"github.com/remitpay/remitpay/internal/payment"
	"github.com/remitpay/remitpay/internal/platform"
	"github.com/remitpay/remitpay/internal/routes"
	"github.com/remitpay/remitpay/internal/scheduler"
	"github.com/remitpay/remitpay/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, idempotency middleware disabled")
	}

	feeBps := cfg.FeeBps
	if feeBps < 0 {
		feeBps = platform.DefaultFeeBps
	}
	pf, err := platform.New(cfg.AdminIdentity, cfg.TreasuryAccount, feeBps)
	if err != nil {
		logger.Error("configure platform", "error", err)
		os.Exit(1)
	}

	var (
		book     ledger.Ledger
		users    identity.Repository
		benRepo  beneficiary.Repository
		history  payment.Repository
		registry asset.Registry
	)
	if db != nil {
		book = ledger.NewPostgresLedger(db)
		users = identity.NewPostgresRepository(db)
		benRepo = beneficiary.NewPostgresRepository(db)
		history = payment.NewPostgresRepository(db)
		registry = asset.NewPostgresRegistry(db)
		for _, id := range cfg.Assets {
			if err := registry.Add(ctx, id); err != nil {
				logger.Error("seed asset", "asset", id, "error", err)
				os.Exit(1)
			}
		}
	} else {
		book = ledger.NewInMemory()
		users = identity.NewMemoryRepository()
		benRepo = beneficiary.NewMemoryRepository()
		history = payment.NewMemoryRepository()
		registry = asset.NewMemoryRegistry(cfg.Assets...)
	}

	clock := clockwork.NewRealClock()
	guard := limits.NewGuard(clock)
	emitter := notification.NewLogEmitter(logger)
	custody := custodian.Static{}

	identitySvc := identity.NewService(users, emitter)
	ledgerSvc := ledger.NewService(book, registry, custody, users, pf, emitter, logger)
	beneficiarySvc := beneficiary.NewService(benRepo, users, registry, emitter)
	paymentSvc := payment.NewService(payment.Config{
		Book:          book,
		Users:         users,
		Beneficiaries: benRepo,
		Assets:        registry,
		Platform:      pf,
		Guard:         guard,
		Custodian:     custody,
		History:       history,
		Emitter:       emitter,
		Clock:         clock,
		Logger:        logger,
	})

	sched, err := scheduler.New(users, benRepo, paymentSvc, cfg.SchedulerInterval, clock, logger)
	if err != nil {
		logger.Error("build scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Warn("stop scheduler", "error", err)
		}
	}()

	srv := server.New(cfg, routes.Deps{
		Cfg:           cfg,
		DB:            db,
		Cache:         cache,
		Logger:        logger,
		Platform:      pf,
		Guard:         guard,
		Identity:      identitySvc,
		Ledger:        ledgerSvc,
		Beneficiaries: beneficiarySvc,
		Payments:      paymentSvc,
		Assets:        registry,
		Emitter:       emitter,
	})

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
