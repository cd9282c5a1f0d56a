package sessiond

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// connectionClaims is the payload of a connection token: which user may
// join which expense session, for how long.
type connectionClaims struct {
	ExpenseID string `json:"expense_id"`
	UserID    string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenMinter issues and verifies the short-lived tokens that authorize a
// single websocket connection to an expense session.
type TokenMinter struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenMinter creates a minter signing with the given secret. Tokens
// expire after ttl.
func NewTokenMinter(secret string, ttl time.Duration) *TokenMinter {
	return &TokenMinter{secret: []byte(secret), ttl: ttl}
}

// Mint issues a connection token for one user on one expense.
func (m *TokenMinter) Mint(expenseID, userID string) (string, error) {
	now := time.Now()
	claims := connectionClaims{
		ExpenseID: expenseID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign connection token: %w", err)
	}
	return signed, nil
}

// Verify checks a connection token's signature and expiry and confirms it
// was minted for the given expense. It returns the user id the token was
// minted for.
func (m *TokenMinter) Verify(tokenString, expenseID string) (string, error) {
	claims := &connectionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse connection token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid connection token")
	}
	if claims.ExpenseID != expenseID {
		return "", fmt.Errorf("connection token not valid for expense %s", expenseID)
	}
	return claims.UserID, nil
}
