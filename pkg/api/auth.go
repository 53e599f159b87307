package api

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	stateCookie    = "oauth_state"
	returnToCookie = "oauth_return_to"
)

func (a *API) LoginPage(w http.ResponseWriter, r *http.Request) {
	a.view.Render(w, r, http.StatusOK, "pages/login", map[string]any{
		"Title": "Sign In",
		"Next":  r.URL.Query().Get("next"),
	})
}

// GoogleLogin starts the OAuth dance. The state nonce and the post-login
// destination ride in short-lived cookies until the callback.
func (a *API) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		a.view.RenderError(w, r, http.StatusInternalServerError, "Failed to start sign-in")
		return
	}

	a.setFlowCookie(w, stateCookie, state)

	if next := r.URL.Query().Get("next"); strings.HasPrefix(next, "/") {
		a.setFlowCookie(w, returnToCookie, next)
	}

	http.Redirect(w, r, a.provider.AuthCodeURL(state), http.StatusFound)
}

func (a *API) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := r.URL.Query().Get("state")
	if state == "" || state != cookieFlowValue(r, stateCookie) {
		a.view.RenderError(w, r, http.StatusBadRequest, "Invalid authentication state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		a.view.RenderError(w, r, http.StatusBadRequest, "Missing authorization code")
		return
	}

	tokens, err := a.provider.Exchange(ctx, code)
	if err != nil {
		log.Err(err).Msg("oauth code exchange failed")
		a.view.RenderError(w, r, http.StatusInternalServerError, "Authentication failed")
		return
	}

	identity, err := a.provider.Verify(ctx, tokens.IDToken)
	if err != nil {
		log.Err(err).Msg("id token verification failed")
		a.view.RenderError(w, r, http.StatusInternalServerError, "Authentication failed")
		return
	}

	a.gate.SetIdentityCookies(w, tokens)
	if err := a.sessions.SetUser(w, r, identity); err != nil {
		log.Err(err).Msg("failed to persist session")
	}

	returnTo := "/"
	if next := cookieFlowValue(r, returnToCookie); strings.HasPrefix(next, "/") {
		returnTo = next
	}
	a.clearFlowCookie(w, stateCookie)
	a.clearFlowCookie(w, returnToCookie)

	http.Redirect(w, r, returnTo, http.StatusFound)
}

func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.gate.ClearIdentity(w, r)
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

func (a *API) setFlowCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   a.config.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearFlowCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.config.Production,
	})
}

func cookieFlowValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
