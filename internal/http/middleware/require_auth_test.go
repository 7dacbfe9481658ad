package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boltadmin/internal/session"
	"boltadmin/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type acceptAll struct{}

func (acceptAll) Verify(_ context.Context, _ string) bool { return true }

func freshToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func performGet(store *session.Store) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireAuth(store)(func(c echo.Context) error {
		return c.String(http.StatusOK, "dashboard")
	})
	return rec, handler(c)
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	store := session.NewStore(t.TempDir(), acceptAll{})

	rec, err := performGet(store)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, expected 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, expected /login", loc)
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	store := session.NewStore(t.TempDir(), acceptAll{})
	if err := store.Establish(freshToken(t), models.Admin{ID: "1", Name: "Admin", Email: "admin@boltfit.example"}); err != nil {
		t.Fatalf("Establish() = %v", err)
	}

	rec, err := performGet(store)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "dashboard" {
		t.Errorf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestRequireAuthRestoresPersistedSession(t *testing.T) {
	dir := t.TempDir()
	seed := session.NewStore(dir, acceptAll{})
	if err := seed.Establish(freshToken(t), models.Admin{Email: "admin@boltfit.example"}); err != nil {
		t.Fatalf("Establish() = %v", err)
	}

	// A fresh store over the same dir, as after a process restart.
	store := session.NewStore(dir, acceptAll{})
	rec, err := performGet(store)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, expected the persisted session to restore", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestID()(func(c echo.Context) error {
		if c.Get("request_id") == nil {
			t.Error("request_id not set on context")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID response header not set")
	}

	// A supplied id is echoed back unchanged.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get("X-Request-ID") != "fixed-id" {
		t.Errorf("X-Request-ID = %q, expected fixed-id", rec.Header().Get("X-Request-ID"))
	}
}
