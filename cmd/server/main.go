package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"

	emailPkg "shoptrack/internal/adapters/email"
	web "shoptrack/internal/adapters/http"
	"shoptrack/internal/adapters/http/perf"
	"shoptrack/internal/adapters/storage"
	accountStore "shoptrack/internal/adapters/storage/account"
	rosterStore "shoptrack/internal/adapters/storage/roster"
	weekStore "shoptrack/internal/adapters/storage/week"
	"shoptrack/internal/application/orchestrators"
	"shoptrack/internal/config"
)

// version is stamped by the release build via -ldflags -X.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("database ready (schema v%d)", storage.LatestSchemaVersion())

	collector := perf.NewCollector()
	timedDB := storage.NewTimedDB(db, collector, float64(cfg.SlowQueryMs))

	rStore := rosterStore.NewSQLiteStore(timedDB)
	wStore := weekStore.NewSQLiteStore(timedDB)
	aStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		RosterStore:  rStore,
		WeekStore:    wStore,
		AccountStore: aStore,
	}

	seedDeps := orchestrators.CreateAccountDeps{AccountStore: aStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		log.Println("email: Resend sender active")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: SHOPTRACK_RESEND_KEY is not set; email delivery is DISABLED in production")
		} else {
			log.Println("email: noop sender (set SHOPTRACK_RESEND_KEY for real delivery)")
		}
	}
	web.SetEmailSender(sender, cfg.EmailFrom, cfg.EmailReplyTo)

	// Ledger policy and rate limit knobs must be set before NewMux
	web.SetLedgerPolicy(cfg.HourRequirement, cfg.TimeoutThreshold)
	web.RateLimitPerSecond = cfg.RateLimitPerSecond

	// Scheduled timeout sweep: force-close visits left open past the threshold
	sweepDeps := orchestrators.TimeoutSweepDeps{
		RosterStore: rStore,
		WeekStore:   wStore,
		Threshold:   cfg.TimeoutThreshold,
		EmailSender: sender,
		EmailFrom:   cfg.EmailFrom,
		EmailReply:  cfg.EmailReplyTo,
		GenerateID:  func() string { return uuid.New().String() },
		Now:         time.Now,
	}
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepSchedule, func() {
		if _, err := orchestrators.ExecuteTimeoutSweep(context.Background(), sweepDeps); err != nil {
			slog.Error("sweep_event", "event", "scheduled_sweep_failed", "error", err)
		}
	}); err != nil {
		log.Fatalf("invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}
	sweeper.Start()
	defer sweeper.Stop()
	log.Printf("timeout sweep scheduled (%s, threshold %s)", cfg.SweepSchedule, cfg.TimeoutThreshold.Format())

	// Template and static paths are relative to the repo root.
	mux := web.NewMux("internal/adapters/http/static", stores, collector)

	log.Printf("shoptrack %s listening on %s (env=%s)", version, cfg.Addr, cfg.Env)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server: %v", err)
	}
}
