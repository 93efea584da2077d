package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

const (
	stateCookie   = "oauth_state"
	stateLifetime = 10 * time.Minute
)

// OAuthHandler drives the GitHub login redirects.
type OAuthHandler struct {
	federated ports.FederatedAuthService
	secure    bool
}

// NewOAuthHandler builds the handler. secure marks the state cookie as
// HTTPS-only.
func NewOAuthHandler(federated ports.FederatedAuthService, secure bool) *OAuthHandler {
	return &OAuthHandler{federated: federated, secure: secure}
}

// GitHubLogin redirects to GitHub's consent page.
//
// @Summary      Start GitHub login
// @Tags         auth
// @Success      307
// @Router       /api/auth/github [get]
func (h *OAuthHandler) GitHubLogin(c echo.Context) error {
	if !h.federated.Enabled() {
		return c.Redirect(http.StatusTemporaryRedirect, h.federated.LoginURL(""))
	}

	state, err := newState()
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth/github",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.federated.LoginURL(state))
}

// GitHubCallback completes the login and sends the browser back to the
// frontend with either a token or an error code.
//
// @Summary      GitHub login callback
// @Tags         auth
// @Param        code   query  string  false  "Authorization code"
// @Param        state  query  string  false  "Anti-forgery state"
// @Success      307
// @Router       /api/auth/github/callback [get]
func (h *OAuthHandler) GitHubCallback(c echo.Context) error {
	if !h.federated.Enabled() {
		return c.Redirect(http.StatusTemporaryRedirect, h.federated.FailureURL(ports.FederatedErrNotConfigured))
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusTemporaryRedirect, h.federated.FailureURL(ports.FederatedErrNoCode))
	}

	cookie, err := c.Cookie(stateCookie)
	h.clearState(c)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return c.Redirect(http.StatusTemporaryRedirect, h.federated.FailureURL(ports.FederatedErrInvalidState))
	}

	return c.Redirect(http.StatusTemporaryRedirect, h.federated.Complete(c.Request().Context(), code))
}

func (h *OAuthHandler) clearState(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/api/auth/github",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func newState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
