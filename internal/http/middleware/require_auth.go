package middleware

import (
	"net/http"

	"boltadmin/internal/session"

	"github.com/labstack/echo/v4"
)

// RequireAuth gates the admin surfaces on the session store. An
// unauthenticated request first gets one restore attempt (covers a fresh
// process with a persisted session), then redirects to the login page.
func RequireAuth(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !store.Authenticated() {
				store.Restore(c.Request().Context())
			}
			if !store.Authenticated() {
				return c.Redirect(http.StatusFound, "/login")
			}

			if admin := store.Admin(); admin != nil {
				c.Set("admin_email", admin.Email)
			}
			return next(c)
		}
	}
}
