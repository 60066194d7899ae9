// Package web exposes the JSON API and wires the middleware chain.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"arisan/internal/adapters/email"
	"arisan/internal/adapters/http/middleware"
	"arisan/internal/adapters/imagehost"
	"arisan/internal/adapters/remote"
	outboxStore "arisan/internal/adapters/storage/outbox"
	snapshotStore "arisan/internal/adapters/storage/snapshot"
	"arisan/internal/application/orchestrators"
	"arisan/internal/application/state"
)

// Deps holds everything the handlers need.
type Deps struct {
	State     *state.Container
	Snapshots snapshotStore.Store
	Outbox    outboxStore.Store
	Remote    remote.Client
	Sender    email.Sender
	Uploader  imagehost.Uploader
	Processor *orchestrators.OutboxProcessor
	ReplyTo   string

	GenerateID func() string
	Now        func() time.Time
}

// mutation projects the shared slice of Deps used by mutating orchestrators.
func (d *Deps) mutation() orchestrators.MutationDeps {
	return orchestrators.MutationDeps{
		State:      d.State,
		Snapshots:  d.Snapshots,
		Outbox:     d.Outbox,
		GenerateID: d.GenerateID,
		Now:        d.Now,
	}
}

// LoadCSRFKey decodes the hex CSRF secret (32 bytes). In production the
// key MUST be set; in development a random per-startup key is generated.
func LoadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("ARISAN_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("ARISAN_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set ARISAN_CSRF_KEY for production.")
	return key
}

// Global deps instance (set by NewMux)
var deps *Deps

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the app.
func NewMux(d *Deps, csrfKey []byte, production bool) http.Handler {
	if d.Now == nil {
		d.Now = timeNow
	}
	if d.GenerateID == nil {
		d.GenerateID = generateID
	}
	deps = d
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = production

	mux := http.NewServeMux()
	registerRoutes(mux)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: SecurityHeaders -> CSRF -> Auth -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
	)
}
