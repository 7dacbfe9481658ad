package handlers

import (
	"net/http"
	"net/url"

	"boltadmin/internal/apperr"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// LoginPage renders the sign-in page with the Google Identity button. The
// button posts the issued credential back to this server.
func (h *Handler) LoginPage(c echo.Context) error {
	if h.sessions.Authenticated() {
		return c.Redirect(http.StatusFound, "/admin")
	}
	return c.Render(http.StatusOK, "login.html", map[string]interface{}{
		"ClientID": h.googleClientID,
		"Error":    c.QueryParam("error"),
	})
}

// Login exchanges the posted identity credential for a bearer token and
// establishes the session. Failures surface on the login page; nothing is
// retried.
func (h *Handler) Login(c echo.Context) error {
	credential := c.FormValue("credential")
	if credential == "" {
		return redirectWithError(c, "/login", "Missing sign-in credential")
	}

	result, err := h.backend.Login(c.Request().Context(), credential)
	if err != nil {
		log.Warn().Err(err).Msg("login failed")
		return redirectWithError(c, "/login", apperr.PublicMessage(err))
	}

	if err := h.sessions.Establish(result.AccessToken, result.Admin); err != nil {
		log.Error().Err(err).Msg("failed to persist session")
		return redirectWithError(c, "/login", "Failed to save the session")
	}

	return c.Redirect(http.StatusFound, "/admin")
}

// Logout clears the session. Idempotent.
func (h *Handler) Logout(c echo.Context) error {
	h.sessions.Clear()
	return c.Redirect(http.StatusFound, "/login")
}

func redirectWithError(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusFound, path+"?error="+url.QueryEscape(msg))
}

func redirectWithNotice(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusFound, path+"?msg="+url.QueryEscape(msg))
}
