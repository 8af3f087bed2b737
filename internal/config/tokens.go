package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenLifetime = 24 * time.Hour

var ErrSessionMismatch = errors.New("token was issued for another session")

// SessionClaims bind a bearer token to one game session. Whoever holds the
// token is the session's single driver.
type SessionClaims struct {
	SessionID int64 `json:"sid"`
	jwt.RegisteredClaims
}

// SessionTokens signs and checks HS256 session tokens.
type SessionTokens struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

func NewSessionTokens() (*SessionTokens, error) {
	secret, err := secretEnv("SESSION_SECRET")
	if err != nil {
		return nil, err
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	lifetime := DefaultTokenLifetime
	if v, ok := os.LookupEnv("SESSION_TOKEN_LIFETIME"); ok && v != "" {
		if lifetime, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid SESSION_TOKEN_LIFETIME: %w", err)
		}
	}
	return NewSessionTokensWithSecret([]byte(secret), lifetime), nil
}

func NewSessionTokensWithSecret(secret []byte, lifetime time.Duration) *SessionTokens {
	return &SessionTokens{
		secret:        secret,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
	}
}

func (t *SessionTokens) Sign(sessionID int64) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(t.signingMethod, claims).SignedString(t.secret)
}

func (t *SessionTokens) Parse(token string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&SessionClaims{},
		func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{t.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}

// Verify checks that token is valid and was issued for sessionID.
func (t *SessionTokens) Verify(token string, sessionID int64) error {
	claims, err := t.Parse(token)
	if err != nil {
		return err
	}
	if claims.SessionID != sessionID {
		return ErrSessionMismatch
	}
	return nil
}
