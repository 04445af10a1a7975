package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "modernc.org/sqlite"

	emailPkg "gymdesk/internal/adapters/email"
	web "gymdesk/internal/adapters/http"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/adapters/storage"
	accountStore "gymdesk/internal/adapters/storage/account"
	memberStore "gymdesk/internal/adapters/storage/member"
	paymentStore "gymdesk/internal/adapters/storage/payment"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.AdminPassword == "" {
		// Development fallback; Validate rejects an empty password in production.
		cfg.AdminPassword = "local admin password"
		log.Println("WARNING: using default admin password. Set GYMDESK_ADMIN_PASSWORD.")
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	// Create store instances (using timed DB for query instrumentation)
	acctStore := accountStore.NewSQLiteStore(timedDB)
	payStore := paymentStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore: acctStore,
		MemberStore:  memberStore.NewSQLiteStore(timedDB),
		PaymentStore: payStore,
	}

	// Seed default admin account if no accounts exist
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: GYMDESK_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set GYMDESK_RESEND_KEY for real delivery)")
		}
	}

	// Start background worker for expiry reminder emails
	reminderDeps := orchestrators.ExpiryRemindersDeps{
		PaymentStore: payStore,
		EmailSender:  sender,
		AdminEmail:   cfg.AdminEmail,
		FromAddress:  cfg.EmailFrom,
		ReplyTo:      cfg.EmailReplyTo,
	}
	stopReminders := orchestrators.StartReminderWorker(context.Background(), reminderDeps, cfg.ReminderEvery)
	defer stopReminders()

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux(cfg.StaticDir, stores, collector, cfg.CSRFKeyBytes(), cfg.IsProduction())

	log.Printf("GymDesk %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)

	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
