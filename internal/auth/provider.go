// Package auth supplies the caller's identity to the REST client and the
// session transport.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid identity token")
	ErrMissingToken = errors.New("identity token required")
)

// Provider exposes an identity as an opaque bearer token plus the user id
// it belongs to. Provisioning the token is outside this module; callers
// hand one in.
type Provider interface {
	// Token returns the raw identity token.
	Token() string

	// Header returns the HTTP header name and value carrying the token.
	Header() (name, value string)

	// UserID returns the authenticated user's id.
	UserID() string
}

// Claims are the token claims this client reads.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenProvider derives identity from a JWT issued by the auth service.
// The token is parsed unverified: only the backend holds the signing key,
// and the client needs nothing from the token beyond its subject.
type TokenProvider struct {
	token  string
	userID string
}

// NewTokenProvider parses the identity token and captures the user id from
// its claims (user_id, falling back to the registered subject).
func NewTokenProvider(token string) (*TokenProvider, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}

	return &TokenProvider{token: token, userID: userID}, nil
}

func (p *TokenProvider) Token() string { return p.token }

func (p *TokenProvider) Header() (string, string) {
	return "Authorization", "Bearer " + p.token
}

func (p *TokenProvider) UserID() string { return p.userID }

// StaticProvider is a fixed identity for tests and local development, where
// sessiond does not verify identity tokens.
type StaticProvider struct {
	UserToken string
	User      string
}

func (p *StaticProvider) Token() string { return p.UserToken }

func (p *StaticProvider) Header() (string, string) {
	return "Authorization", "Bearer " + p.UserToken
}

func (p *StaticProvider) UserID() string { return p.User }
