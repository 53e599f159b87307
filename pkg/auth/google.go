package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/driveshare/driveshare/pkg/config"
)

// Identity is the verified subject of a Google ID token.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// Tokens is the cookie-persisted credential pair for a session.
type Tokens struct {
	IDToken      string
	RefreshToken string
}

// IdentityProvider is the identity collaborator: token verification and
// refresh. Production uses Google; tests inject a fake.
type IdentityProvider interface {
	// AuthCodeURL starts the authorization code flow.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string) (Tokens, error)

	// Verify checks an ID token and returns its identity.
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)

	// Refresh obtains fresh tokens from a refresh token.
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

type GoogleProvider struct {
	conf *oauth2.Config
}

func NewGoogleProvider(c config.Auth) *GoogleProvider {
	return &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			RedirectURL:  c.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

func (g *GoogleProvider) Exchange(ctx context.Context, code string) (Tokens, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return Tokens{}, err
	}
	return tokensFrom(tok)
}

func (g *GoogleProvider) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, rawIDToken, g.conf.ClientID)
	if err != nil {
		return nil, err
	}

	id := &Identity{
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}
	if id.Email == "" {
		return nil, errors.New("id token has no email claim")
	}
	return id, nil
}

func (g *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	ts := g.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return Tokens{}, err
	}
	return tokensFrom(tok)
}

func tokensFrom(tok *oauth2.Token) (Tokens, error) {
	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		return Tokens{}, errors.New("token response has no id_token")
	}
	return Tokens{IDToken: idToken, RefreshToken: tok.RefreshToken}, nil
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}
