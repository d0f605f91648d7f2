package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskdeck/backend/internal/config"
)

// ErrInvalidToken is the only error Verify returns. Callers cannot tell a
// forged token from an expired or malformed one.
var ErrInvalidToken = errors.New("invalid token")

// Token is a signed access token together with the instants it was issued
// and expires, both truncated to the second as encoded in its claims.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresIn is the validity window the token was issued with.
func (t Token) ExpiresIn() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}

// TokenCodec signs and verifies HMAC JWTs whose subject is a username.
// It is immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secret   []byte
	method   *jwt.SigningMethodHMAC
	lifetime time.Duration
	now      func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

func NewTokenCodec(cfg config.AuthConfig, opts ...CodecOption) (*TokenCodec, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: SECRET_KEY is required", config.ErrInvalidConfig)
	}

	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported ALGORITHM %q", config.ErrInvalidConfig, cfg.Algorithm)
	}

	lifetime := cfg.AccessTokenTTL()
	if lifetime <= 0 {
		return nil, fmt.Errorf("%w: ACCESS_TOKEN_EXPIRE_MINUTES must be positive", config.ErrInvalidConfig)
	}

	c := &TokenCodec{
		secret:   []byte(cfg.SecretKey),
		method:   method,
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue mints a token for subject valid for the default lifetime.
func (c *TokenCodec) Issue(subject string) (Token, error) {
	return c.IssueFor(subject, c.lifetime)
}

// IssueFor mints a token for subject valid for lifetime. A zero or negative
// lifetime produces a token that is already expired.
func (c *TokenCodec) IssueFor(subject string, lifetime time.Duration) (Token, error) {
	if subject == "" {
		return Token{}, errors.New("issue token: empty subject")
	}

	now := c.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(lifetime))
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{Value: signed, IssuedAt: issuedAt.Time, ExpiresAt: expiresAt.Time}, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
// A token is valid strictly before its exp second. Segments must be
// canonical base64url, so only the exact issued string verifies.
func (c *TokenCodec) Verify(tokenString string) (subject string, err error) {
	defer func() {
		if r := recover(); r != nil {
			subject, err = "", ErrInvalidToken
		}
	}()

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
