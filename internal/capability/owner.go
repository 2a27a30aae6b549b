// Package capability issues and verifies owner tokens: signed proofs that the
// holder submitted a given confession. Presenting a valid token is the only
// way to edit or delete a confession.
package capability

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Audience restricts tokens to confession ownership.
	Audience = "confession-owner"
	// Issuer is the iss claim of every token.
	Issuer = "campus-hub"
	// DefaultTTL applies when Issuer is built with a non-positive TTL.
	DefaultTTL = 30 * 24 * time.Hour
)

// ErrInvalidToken covers every verification failure: malformed, wrong
// algorithm, signature, subject or audience, and expiry.
var ErrInvalidToken = errors.New("invalid owner token")

// Owner is the contract used by services.
type Owner interface {
	Issue(confessionID string, now time.Time) (string, error)
	Verify(token, confessionID string, now time.Time) error
}

// Tokens signs owner tokens with HS256.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// New returns a Tokens signer. The secret must be non-empty.
func New(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("owner token secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}, nil
}

// Issue returns a token for confessionID valid from now for the TTL.
func (t *Tokens) Issue(confessionID string, now time.Time) (string, error) {
	if strings.TrimSpace(confessionID) == "" {
		return "", errors.New("confession id is empty")
	}
	claims := jwt.RegisteredClaims{
		Subject:   confessionID,
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign owner token: %w", err)
	}
	return s, nil
}

// Verify checks that token proves ownership of confessionID at now.
func (t *Tokens) Verify(token, confessionID string, now time.Time) error {
	if token == "" || confessionID == "" {
		return ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(Audience),
		jwt.WithIssuer(Issuer),
		jwt.WithSubject(confessionID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
