package auth

import (
	"context"
	"crypto/rand"
	"encoding/gob"
	"encoding/hex"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const sessionName = "driveshare_session"

func init() {
	gob.Register(&Identity{})
	gob.Register(Flash{})
}

type FlashType string

const (
	FlashTypeSuccess FlashType = "success"
	FlashTypeWarning FlashType = "warning"
	FlashTypeError   FlashType = "error"
)

type Flash struct {
	Type    FlashType
	Title   string
	Message string
}

type contextKey string

const identityContextKey contextKey = "identity"

// IdentityFrom returns the authenticated identity placed on the request
// context by RequireAuth.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	return id, ok
}

func withIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// Sessions wraps the gorilla session store: the signed-in identity, the
// per-session component token, and flash messages.
type Sessions struct {
	store sessions.Store
}

func NewSessions(store sessions.Store) *Sessions {
	return &Sessions{store: store}
}

func NewCookieSessions(secret string, production bool) *Sessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	}
	return NewSessions(store)
}

func (s *Sessions) User(r *http.Request) (*Identity, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// A corrupt session cookie means unauthenticated, not a failure.
		return nil, false
	}
	id, ok := session.Values["user"].(*Identity)
	return id, ok
}

func (s *Sessions) SetUser(w http.ResponseWriter, r *http.Request, id *Identity) error {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		session, err = s.store.New(r, sessionName)
		if err != nil {
			return err
		}
	}
	session.Values["user"] = id
	return session.Save(r, w)
}

// ComponentToken returns the token minted for this session at dashboard
// render time, empty when none exists.
func (s *Sessions) ComponentToken(r *http.Request) string {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values["componentToken"].(string)
	return token
}

// MintComponentToken stores a fresh component token in the session and
// returns it. Every full dashboard render rotates the token.
func (s *Sessions) MintComponentToken(w http.ResponseWriter, r *http.Request) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	session, err := s.store.Get(r, sessionName)
	if err != nil {
		session, err = s.store.New(r, sessionName)
		if err != nil {
			return "", err
		}
	}
	session.Values["componentToken"] = token
	if err := session.Save(r, w); err != nil {
		return "", err
	}
	return token, nil
}

// Destroy drops the whole session.
func (s *Sessions) Destroy(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return
	}
	session.Options.MaxAge = -1
	session.Values = map[any]any{}
	if err := session.Save(r, w); err != nil {
		log.Err(err).Msg("failed to destroy session")
	}
}

func (s *Sessions) NewFlash(w http.ResponseWriter, r *http.Request, f Flash) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		log.Err(err).Msg("failed to get session")
		return
	}
	session.AddFlash(f)
	if err := session.Save(r, w); err != nil {
		log.Err(err).Msg("failed to save session")
	}
}

func (s *Sessions) GetFlashes(w http.ResponseWriter, r *http.Request) ([]any, error) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil, err
	}
	flashes := session.Flashes()
	if err := session.Save(r, w); err != nil {
		return nil, err
	}
	return flashes, nil
}
