package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "linecheck/internal/adapters/email"
	web "linecheck/internal/adapters/http"
	"linecheck/internal/adapters/http/perf"
	smsPkg "linecheck/internal/adapters/sms"
	"linecheck/internal/adapters/storage"
	accountStore "linecheck/internal/adapters/storage/account"
	billingStore "linecheck/internal/adapters/storage/billing"
	blogStore "linecheck/internal/adapters/storage/blog"
	distributionStore "linecheck/internal/adapters/storage/distribution"
	leadStore "linecheck/internal/adapters/storage/lead"
	locationStore "linecheck/internal/adapters/storage/location"
	microcheckStore "linecheck/internal/adapters/storage/microcheck"
	pulseStore "linecheck/internal/adapters/storage/pulsesurvey"
	reviewStore "linecheck/internal/adapters/storage/review"
	"linecheck/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("LINECHECK_DB", "linecheck.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	locStore := locationStore.NewSQLiteStore(timedDB)
	tplStore := microcheckStore.NewTemplateSQLiteStore(timedDB)
	subStore := billingStore.NewSQLiteStore(timedDB)
	deliveryStore := distributionStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:         acctStore,
		ActivationTokenStore: accountStore.NewTokenSQLiteStore(timedDB),
		LocationStore:        locStore,
		TemplateStore:        tplStore,
		RunStore:             microcheckStore.NewRunSQLiteStore(timedDB),
		MagicTokenStore:      microcheckStore.NewTokenSQLiteStore(timedDB),
		ResponseStore:        microcheckStore.NewResponseSQLiteStore(timedDB),
		DeliveryStore:        deliveryStore,
		SurveyStore:          pulseStore.NewSQLiteStore(timedDB),
		PulseResponseStore:   pulseStore.NewResponseSQLiteStore(timedDB),
		ReviewStore:          reviewStore.NewSQLiteStore(timedDB),
		SubscriptionStore:    subStore,
		PostStore:            blogStore.NewSQLiteStore(timedDB),
		LeadStore:            leadStore.NewSQLiteStore(timedDB),
	}

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("LINECHECK_ADMIN_EMAIL", "admin@linecheck.app")
	adminPassword := envOrDefault("LINECHECK_ADMIN_PASSWORD", "Change me before launch")
	seedDeps := orchestrators.SeedDeps{
		AccountStore:      acctStore,
		LocationStore:     locStore,
		TemplateStore:     tplStore,
		SubscriptionStore: subStore,
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed demo accounts, locations and check templates for development only
	if os.Getenv("LINECHECK_ENV") != "production" {
		if err := orchestrators.ExecuteSeedDemo(context.Background(), seedDeps, adminPassword); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		log.Println("Demo seed data loaded (dev mode)")
	}

	// Configure email sender
	resendKey := os.Getenv("LINECHECK_RESEND_KEY")
	emailFrom := envOrDefault("LINECHECK_RESEND_FROM", "LineCheck <noreply@linecheck.app>")
	emailReply := envOrDefault("LINECHECK_REPLY_TO", "hello@linecheck.app")
	var emailSender emailPkg.Sender
	if resendKey != "" {
		emailSender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		emailSender = emailPkg.NewNoopSender()
		if os.Getenv("LINECHECK_ENV") == "production" {
			log.Println("WARNING: LINECHECK_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set LINECHECK_RESEND_KEY for real delivery)")
		}
	}
	web.SetEmailSender(emailSender, emailFrom, emailReply)

	// SMS magic links are logged until a real gateway is wired up.
	smsSender := smsPkg.NewLogSender()
	web.SetSMSSender(smsSender)

	// Start the background worker that retries queued magic-link deliveries
	retryCtx, cancelRetry := context.WithCancel(context.Background())
	stopRetry := orchestrators.StartDeliveryRetryScheduler(retryCtx, orchestrators.DeliveryRetryDeps{
		DeliveryStore: deliveryStore,
		EmailSender:   emailSender,
		SMSSender:     smsSender,
		EmailFrom:     emailFrom,
	}, orchestrators.DefaultDeliveryRetryConfig())
	defer cancelRetry()
	defer stopRetry()

	// Create HTTP handler with middleware (pass collector for timing + dashboard)
	mux := web.NewMux("static", stores, collector)

	addr := envOrDefault("LINECHECK_ADDR", ":8080")
	log.Printf("LineCheck %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("LINECHECK_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
