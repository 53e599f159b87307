package auth

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/config"
)

// Cookie names for the identity-provider credential pair.
const (
	idTokenCookie      = "googleToken"
	refreshTokenCookie = "googleRefreshToken"
)

const (
	AdminKeyHeader       = "x-admin-key"
	AdminKeyQuery        = "adminKey"
	ComponentTokenHeader = "x-component-token"
)

// Gate is the admission layer: identity, admin entitlement, and component
// token checks, each as a chi middleware.
type Gate struct {
	sessions    *Sessions
	provider    IdentityProvider
	adminKey    string
	adminEmails []string
	production  bool

	// unauthorized renders the 401 page for identified but unentitled
	// callers. Injected to keep this package free of the view engine.
	unauthorized http.HandlerFunc
}

func NewGate(sessions *Sessions, provider IdentityProvider, c config.Auth, production bool, unauthorized http.HandlerFunc) *Gate {
	return &Gate{
		sessions:     sessions,
		provider:     provider,
		adminKey:     c.AdminKey,
		adminEmails:  c.AdminEmails,
		production:   production,
		unauthorized: unauthorized,
	}
}

// RequireAuth admits requests with a session identity, a verifiable ID
// token cookie, or a refreshable token pair, in that order. Terminal
// failure clears both cookies and the session before redirecting to login,
// so a poisoned cookie cannot loop.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := g.sessions.User(r); ok {
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
			return
		}

		token := cookieValue(r, idTokenCookie)
		if token == "" {
			g.redirectToLogin(w, r)
			return
		}

		if id, err := g.provider.Verify(r.Context(), token); err == nil {
			if err := g.sessions.SetUser(w, r, id); err != nil {
				log.Err(err).Msg("failed to store user in session")
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
			return
		} else {
			log.Debug().Err(err).Msg("id token verification failed")
		}

		if refresh := cookieValue(r, refreshTokenCookie); refresh != "" {
			if id, ok := g.tryRefresh(w, r, refresh); ok {
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
				return
			}
		}

		g.clearIdentity(w, r)
		g.redirectToLogin(w, r)
	})
}

func (g *Gate) tryRefresh(w http.ResponseWriter, r *http.Request, refreshToken string) (*Identity, bool) {
	tokens, err := g.provider.Refresh(r.Context(), refreshToken)
	if err != nil {
		log.Debug().Err(err).Msg("token refresh failed")
		return nil, false
	}

	g.SetIdentityCookies(w, tokens)

	id, err := g.provider.Verify(r.Context(), tokens.IDToken)
	if err != nil {
		log.Debug().Err(err).Msg("refreshed id token failed verification")
		return nil, false
	}

	if err := g.sessions.SetUser(w, r, id); err != nil {
		log.Err(err).Msg("failed to store user in session")
	}
	return id, true
}

// RequireAdmin must run inside RequireAuth. The caller-supplied admin key
// and the identity's allow-list membership must both hold; failing either
// renders unauthorized, never a redirect, since the caller is identified
// but not entitled.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminKey := r.Header.Get(AdminKeyHeader)
		if adminKey == "" {
			adminKey = r.URL.Query().Get(AdminKeyQuery)
		}

		if g.adminKey == "" || adminKey != g.adminKey {
			g.unauthorized(w, r)
			return
		}

		id, ok := IdentityFrom(r.Context())
		if !ok || !slices.Contains(g.adminEmails, id.Email) {
			g.unauthorized(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireComponentToken authorizes partial-render requests: the header
// token must exactly equal the one minted for this session. No token, a
// mismatch, or no session at all are all rejected.
func (g *Gate) RequireComponentToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(ComponentTokenHeader)
		sessionToken := g.sessions.ComponentToken(r)

		if token == "" || sessionToken == "" || token != sessionToken {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, render.M{"error": "Unauthorized component request"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SetIdentityCookies persists the credential pair: ID token for an hour,
// refresh token for seven days when present.
func (g *Gate) SetIdentityCookies(w http.ResponseWriter, tokens Tokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     idTokenCookie,
		Value:    tokens.IDToken,
		Path:     "/",
		MaxAge:   int(time.Hour.Seconds()),
		HttpOnly: true,
		Secure:   g.production,
		SameSite: http.SameSiteLaxMode,
	})

	if tokens.RefreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     refreshTokenCookie,
			Value:    tokens.RefreshToken,
			Path:     "/",
			MaxAge:   int((7 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			Secure:   g.production,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearIdentity wipes cookies and session state. Exposed for logout.
func (g *Gate) ClearIdentity(w http.ResponseWriter, r *http.Request) {
	g.clearIdentity(w, r)
}

func (g *Gate) clearIdentity(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{idTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   g.production,
		})
	}
	g.sessions.Destroy(w, r)
}

func (g *Gate) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	returnTo := url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, "/auth/login?next="+returnTo, http.StatusFound)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
