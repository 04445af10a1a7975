package web

import (
	"crypto/rand"
	"log"
	"net/http"
	"time"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/adapters/http/perf"
	accountStore "gymdesk/internal/adapters/storage/account"
	memberStore "gymdesk/internal/adapters/storage/member"
	paymentStore "gymdesk/internal/adapters/storage/payment"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	MemberStore  memberStore.Store
	PaymentStore paymentStore.Store
}

// devCSRFKey generates a per-startup random key for development runs
// without a configured secret. Config validation guarantees production
// always supplies one.
func devCSRFKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (tokens won't survive restart). Set GYMDESK_CSRF_KEY for production.")
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

// NewMux wires HTTP handlers for the app. csrfKey is the validated
// 32-byte secret from config, or nil in development to generate one;
// secureCookies should be true when serving over HTTPS.
func NewMux(staticDir string, s *Stores, collector *perf.Collector, csrfKey []byte, secureCookies bool) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = secureCookies

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	if csrfKey == nil {
		csrfKey = devCSRFKey()
	}

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
