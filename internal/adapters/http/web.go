package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"linecheck/internal/adapters/email"
	"linecheck/internal/adapters/http/middleware"
	"linecheck/internal/adapters/http/perf"
	"linecheck/internal/adapters/sms"
	accountStore "linecheck/internal/adapters/storage/account"
	billingStore "linecheck/internal/adapters/storage/billing"
	blogStore "linecheck/internal/adapters/storage/blog"
	distributionStore "linecheck/internal/adapters/storage/distribution"
	leadStore "linecheck/internal/adapters/storage/lead"
	locationStore "linecheck/internal/adapters/storage/location"
	microcheckStore "linecheck/internal/adapters/storage/microcheck"
	pulseStore "linecheck/internal/adapters/storage/pulsesurvey"
	reviewStore "linecheck/internal/adapters/storage/review"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore         accountStore.Store
	ActivationTokenStore accountStore.TokenStore
	LocationStore        locationStore.Store
	TemplateStore        microcheckStore.TemplateStore
	RunStore             microcheckStore.RunStore
	MagicTokenStore      microcheckStore.TokenStore
	ResponseStore        microcheckStore.ResponseStore
	DeliveryStore        distributionStore.Store
	SurveyStore          pulseStore.Store
	PulseResponseStore   pulseStore.ResponseStore
	ReviewStore          reviewStore.Store
	SubscriptionStore    billingStore.Store
	PostStore            blogStore.Store
	LeadStore            leadStore.Store
}

// loadCSRFKey reads the CSRF secret from LINECHECK_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("LINECHECK_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("LINECHECK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("LINECHECK_ENV") == "production" {
		log.Fatal("LINECHECK_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set LINECHECK_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// Global sms sender instance (set by SetSMSSender)
var smsSender sms.Sender

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// SetSMSSender sets the global sms sender for the application.
func SetSMSSender(sender sms.Sender) {
	smsSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("LINECHECK_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
