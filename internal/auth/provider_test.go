package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestNewTokenProvider(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"user_id": "u1"})

	provider, err := NewTokenProvider(token)
	if err != nil {
		t.Fatalf("NewTokenProvider() error = %v", err)
	}
	if provider.UserID() != "u1" {
		t.Errorf("UserID() = %q, want u1", provider.UserID())
	}
	if provider.Token() != token {
		t.Error("Token() does not round-trip the input")
	}
	name, value := provider.Header()
	if name != "Authorization" || value != "Bearer "+token {
		t.Errorf("Header() = %q, %q", name, value)
	}
}

func TestNewTokenProviderSubjectFallback(t *testing.T) {
	token := signToken(t, jwt.RegisteredClaims{Subject: "u2"})

	provider, err := NewTokenProvider(token)
	if err != nil {
		t.Fatalf("NewTokenProvider() error = %v", err)
	}
	if provider.UserID() != "u2" {
		t.Errorf("UserID() = %q, want u2", provider.UserID())
	}
}

func TestNewTokenProviderRejects(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty token", "", ErrMissingToken},
		{"not a jwt", "garbage", ErrInvalidToken},
		{"no user claim", signTokenNoUser(t), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenProvider(tt.token); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewTokenProvider() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func signTokenNoUser(t *testing.T) string {
	return signToken(t, jwt.MapClaims{"aud": "billsync"})
}

func TestStaticProvider(t *testing.T) {
	provider := &StaticProvider{UserToken: "tok", User: "u1"}
	if provider.UserID() != "u1" || provider.Token() != "tok" {
		t.Errorf("provider = %+v", provider)
	}
	name, value := provider.Header()
	if name != "Authorization" || value != "Bearer tok" {
		t.Errorf("Header() = %q, %q", name, value)
	}
}
