package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"boltadmin/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	tokenFile  = "auth_token"
	adminFile  = "admin.json"
	mirrorFile = "cookie.json"

	// mirrorTTL matches the 7-day cookie expiry the backend's other clients
	// use for cross-context availability.
	mirrorTTL = 7 * 24 * time.Hour
)

// Verifier re-validates a persisted token against the backend.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

// Store owns the session lifecycle: an opaque bearer token plus the admin
// profile, persisted across runs under a state directory. It gates every
// privileged surface of the console, threaded in as an explicit dependency
// rather than reached through ambient globals.
type Store struct {
	dir      string
	verifier Verifier

	mu            sync.Mutex
	authenticated bool
	token         string
	admin         *models.Admin
}

// NewStore creates a session store rooted at dir.
func NewStore(dir string, verifier Verifier) *Store {
	return &Store{dir: dir, verifier: verifier}
}

// mirrorEntry duplicates the primary token+profile entries with an expiry, so
// a session survives loss of the primary entries within the mirror window.
type mirrorEntry struct {
	Token     string       `json:"token"`
	Admin     models.Admin `json:"admin"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Restore reads the persisted session and re-validates it against the
// backend. It never returns an error: any failure, from missing entries to an
// unreachable backend, degrades to "not authenticated". With no persisted
// token it issues no network call at all.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, admin, ok := s.readPersisted()
	if !ok {
		s.clearLocked()
		return
	}

	if tokenExpired(token) {
		log.Debug().Msg("persisted token already expired, skipping verification")
		s.clearLocked()
		return
	}

	if !s.verifier.Verify(ctx, token) {
		log.Info().Msg("backend rejected persisted token, clearing session")
		s.clearLocked()
		return
	}

	s.token = token
	s.admin = &admin
	s.authenticated = true

	// Re-persist to normalize storage and refresh the mirror window.
	if err := s.persistLocked(token, admin); err != nil {
		log.Warn().Err(err).Msg("failed to re-persist session")
	}
}

// Establish persists the token and profile after a successful identity
// exchange and marks the session authenticated.
func (s *Store) Establish(token string, admin models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistLocked(token, admin); err != nil {
		return err
	}

	s.token = token
	s.admin = &admin
	s.authenticated = true
	return nil
}

// Clear removes persisted session data and marks the session not
// authenticated. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// CurrentToken returns the persisted token, or "" when there is none. Used to
// attach the Authorization header on every privileged request.
func (s *Store) CurrentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token
	}
	token, _, ok := s.readPersisted()
	if !ok {
		return ""
	}
	return token
}

// Authenticated reports whether the session holds a token and profile that
// passed the last check.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Admin returns the authenticated admin profile, or nil.
func (s *Store) Admin() *models.Admin {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admin == nil {
		return nil
	}
	copied := *s.admin
	return &copied
}

func (s *Store) readPersisted() (string, models.Admin, bool) {
	tokenBytes, tokenErr := os.ReadFile(filepath.Join(s.dir, tokenFile))
	adminBytes, adminErr := os.ReadFile(filepath.Join(s.dir, adminFile))

	if tokenErr == nil && adminErr == nil {
		var admin models.Admin
		if err := json.Unmarshal(adminBytes, &admin); err != nil {
			return "", models.Admin{}, false
		}
		return string(tokenBytes), admin, true
	}

	// Fall back to an unexpired mirror entry.
	mirrorBytes, err := os.ReadFile(filepath.Join(s.dir, mirrorFile))
	if err != nil {
		return "", models.Admin{}, false
	}
	var mirror mirrorEntry
	if err := json.Unmarshal(mirrorBytes, &mirror); err != nil {
		return "", models.Admin{}, false
	}
	if mirror.Token == "" || time.Now().After(mirror.ExpiresAt) {
		return "", models.Admin{}, false
	}
	return mirror.Token, mirror.Admin, true
}

func (s *Store) persistLocked(token string, admin models.Admin) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	adminBytes, err := json.Marshal(admin)
	if err != nil {
		return err
	}
	mirrorBytes, err := json.Marshal(mirrorEntry{
		Token:     token,
		Admin:     admin,
		ExpiresAt: time.Now().Add(mirrorTTL),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, adminFile), adminBytes, 0o600); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, mirrorFile), mirrorBytes, 0o600)
}

func (s *Store) clearLocked() {
	for _, name := range []string{tokenFile, adminFile, mirrorFile} {
		os.Remove(filepath.Join(s.dir, name))
	}
	s.token = ""
	s.admin = nil
	s.authenticated = false
}

// tokenExpired makes a best-effort unverified read of the token's exp claim.
// The token is otherwise opaque to this app; anything unparseable just takes
// the network verification path.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
