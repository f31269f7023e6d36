// Package web serves the kiosk, the steward views and the JSON API.
// Handlers are plain functions over package-level stores; NewMux wires
// the stores, the session store and the middleware stack.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"shoptrack/internal/adapters/email"
	"shoptrack/internal/adapters/http/middleware"
	"shoptrack/internal/adapters/http/perf"
	accountStore "shoptrack/internal/adapters/storage/account"
	rosterStore "shoptrack/internal/adapters/storage/roster"
	weekStore "shoptrack/internal/adapters/storage/week"
	"shoptrack/internal/domain/hms"
)

// Stores holds the storage dependencies the handlers run against.
type Stores struct {
	RosterStore  rosterStore.Store
	WeekStore    weekStore.Store
	AccountStore accountStore.Store
}

// RateLimitPerSecond is the per-IP request budget. Main sets it from
// config before NewMux; browser tests raise it so playwright traffic
// from one IP is not throttled.
var RateLimitPerSecond = 10

// Wiring set once at startup (NewMux, SetEmailSender, SetLedgerPolicy)
// and read by the handler files.
var (
	stores        *Stores
	sessions      *middleware.SessionStore
	perfCollector *perf.Collector

	emailSender      email.Sender
	emailFromAddress string
	emailReplyTo     string

	// Ledger policy knobs. Zero values fall back to the built-in
	// defaults in the orchestrators.
	defaultRequirement hms.Duration
	timeoutThreshold   hms.Duration
)

// SetEmailSender wires the sender used for timeout courtesy notices.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// SetLedgerPolicy sets the weekly requirement applied to new members
// and the threshold past which an open visit is timed out. A zero
// duration keeps the built-in default for that knob.
func SetLedgerPolicy(requirement, threshold hms.Duration) {
	defaultRequirement = requirement
	timeoutThreshold = threshold
}

// loadCSRFKey reads the 32-byte CSRF secret from SHOPTRACK_CSRF_KEY
// (hex). Production refuses to start without one; development falls
// back to a random per-boot key, which invalidates forms on restart.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("SHOPTRACK_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("SHOPTRACK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("SHOPTRACK_ENV") == "production" {
		log.Fatal("SHOPTRACK_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("csrf key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set SHOPTRACK_CSRF_KEY for production.")
	return key
}

// NewMux builds the full handler stack. Requests pass Timing, then the
// rate limiter, then Auth, then CSRF, then the security headers, and
// finally the route mux.
func NewMux(staticDir string, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("SHOPTRACK_ENV") == "production"

	mux := http.NewServeMux()
	// The kiosk page owns "/", so assets live under /static/.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(loadCSRFKey()),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
