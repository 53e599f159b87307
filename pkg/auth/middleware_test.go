package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveshare/driveshare/pkg/auth"
	"github.com/driveshare/driveshare/pkg/config"
)

type fakeProvider struct {
	identities map[string]*auth.Identity
	refreshed  map[string]auth.Tokens
}

func (f *fakeProvider) AuthCodeURL(state string) string { return "https://example.com/auth?state=" + state }

func (f *fakeProvider) Exchange(ctx context.Context, code string) (auth.Tokens, error) {
	return auth.Tokens{}, errors.New("not implemented")
}

func (f *fakeProvider) Verify(ctx context.Context, rawIDToken string) (*auth.Identity, error) {
	id, ok := f.identities[rawIDToken]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return id, nil
}

func (f *fakeProvider) Refresh(ctx context.Context, refreshToken string) (auth.Tokens, error) {
	tokens, ok := f.refreshed[refreshToken]
	if !ok {
		return auth.Tokens{}, errors.New("refresh denied")
	}
	return tokens, nil
}

func newGate(t *testing.T, provider auth.IdentityProvider) (*auth.Gate, *auth.Sessions) {
	t.Helper()
	sessions := auth.NewCookieSessions("test-secret", false)
	gate := auth.NewGate(sessions, provider, config.Auth{
		AdminKey:    "admin-key",
		AdminEmails: []string{"admin@example.com"},
	}, false, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
	return gate, sessions
}

func okHandler() (http.Handler, *bool) {
	called := new(bool)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.Write([]byte("ok"))
	}), called
}

// login runs a request through SetUser and copies the session cookies onto
// subsequent requests.
func login(t *testing.T, sessions *auth.Sessions, id *auth.Identity) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sessions.SetUser(w, r, id))
	return w.Result().Cookies()
}

func TestRequireAuthAnonymousRedirects(t *testing.T) {
	gate, _ := newGate(t, &fakeProvider{})
	next, called := okHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/share/abc?folderId=F2", nil)
	gate.RequireAuth(next).ServeHTTP(w, r)

	assert.False(t, *called)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login?next=")
	assert.Contains(t, w.Header().Get("Location"), "folderId%3DF2")
}

func TestRequireAuthSessionUser(t *testing.T) {
	gate, sessions := newGate(t, &fakeProvider{})
	next, called := okHandler()

	cookies := login(t, sessions, &auth.Identity{Email: "user@example.com"})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/share/abc", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	gate.RequireAuth(next).ServeHTTP(w, r)

	assert.True(t, *called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthValidTokenCookie(t *testing.T) {
	provider := &fakeProvider{identities: map[string]*auth.Identity{
		"good-token": {Email: "user@example.com"},
	}}
	gate, _ := newGate(t, provider)
	next, called := okHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/share/abc", nil)
	r.AddCookie(&http.Cookie{Name: "googleToken", Value: "good-token"})
	gate.RequireAuth(next).ServeHTTP(w, r)

	assert.True(t, *called)
}

func TestRequireAuthRefreshFlow(t *testing.T) {
	provider := &fakeProvider{
		identities: map[string]*auth.Identity{
			"fresh-token": {Email: "user@example.com"},
		},
		refreshed: map[string]auth.Tokens{
			"refresh-me": {IDToken: "fresh-token", RefreshToken: "refresh-me"},
		},
	}
	gate, _ := newGate(t, provider)
	next, called := okHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/share/abc", nil)
	r.AddCookie(&http.Cookie{Name: "googleToken", Value: "stale-token"})
	r.AddCookie(&http.Cookie{Name: "googleRefreshToken", Value: "refresh-me"})
	gate.RequireAuth(next).ServeHTTP(w, r)

	assert.True(t, *called)

	var sawFreshIDToken bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "googleToken" && c.Value == "fresh-token" {
			sawFreshIDToken = true
		}
	}
	assert.True(t, sawFreshIDToken)
}

func TestRequireAuthTerminalFailureClearsCookies(t *testing.T) {
	gate, _ := newGate(t, &fakeProvider{})
	next, called := okHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/share/abc", nil)
	r.AddCookie(&http.Cookie{Name: "googleToken", Value: "bogus"})
	r.AddCookie(&http.Cookie{Name: "googleRefreshToken", Value: "also-bogus"})
	gate.RequireAuth(next).ServeHTTP(w, r)

	assert.False(t, *called)
	assert.Equal(t, http.StatusFound, w.Code)

	cleared := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	assert.True(t, cleared["googleToken"])
	assert.True(t, cleared["googleRefreshToken"])
}

func adminRequest(t *testing.T, gate *auth.Gate, sessions *auth.Sessions, email, adminKey string) *httptest.ResponseRecorder {
	t.Helper()
	next, _ := okHandler()
	cookies := login(t, sessions, &auth.Identity{Email: email})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/share", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	if adminKey != "" {
		r.Header.Set("x-admin-key", adminKey)
	}
	gate.RequireAuth(gate.RequireAdmin(next)).ServeHTTP(w, r)
	return w
}

func TestRequireAdmin(t *testing.T) {
	gate, sessions := newGate(t, &fakeProvider{})

	w := adminRequest(t, gate, sessions, "admin@example.com", "admin-key")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminWrongKey(t *testing.T) {
	gate, sessions := newGate(t, &fakeProvider{})

	w := adminRequest(t, gate, sessions, "admin@example.com", "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminEmailNotAllowed(t *testing.T) {
	gate, sessions := newGate(t, &fakeProvider{})

	// right key, but the identity is not on the allow-list
	w := adminRequest(t, gate, sessions, "user@example.com", "admin-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminKeyViaQuery(t *testing.T) {
	gate, sessions := newGate(t, &fakeProvider{})
	next, called := okHandler()
	cookies := login(t, sessions, &auth.Identity{Email: "admin@example.com"})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/share?adminKey=admin-key", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	gate.RequireAuth(gate.RequireAdmin(next)).ServeHTTP(w, r)

	assert.True(t, *called)
}

func TestRequireComponentToken(t *testing.T) {
	gate, sessions := newGate(t, &fakeProvider{})
	next, called := okHandler()

	// mint a token into a session
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	token, err := sessions.MintComponentToken(w, r)
	require.NoError(t, err)
	cookies := w.Result().Cookies()

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/components/admin/StatsCard", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	r.Header.Set("x-component-token", token)
	gate.RequireComponentToken(next).ServeHTTP(w, r)

	assert.True(t, *called)
}

func TestRequireComponentTokenMismatch(t *testing.T) {
	gate, sessions := newGate(t, &fakeProvider{})
	next, called := okHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := sessions.MintComponentToken(w, r)
	require.NoError(t, err)
	cookies := w.Result().Cookies()

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/components/admin/StatsCard", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	r.Header.Set("x-component-token", "not-the-minted-token")
	gate.RequireComponentToken(next).ServeHTTP(w, r)

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestRequireComponentTokenNoSession(t *testing.T) {
	gate, _ := newGate(t, &fakeProvider{})
	next, called := okHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/components/admin/StatsCard", nil)
	r.Header.Set("x-component-token", "anything")
	gate.RequireComponentToken(next).ServeHTTP(w, r)

	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
