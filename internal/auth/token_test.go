package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/backend/internal/config"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(cheapAuthConfig(), WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(30*time.Minute), token.ExpiresAt)
	assert.Equal(t, clock.now, token.IssuedAt)
	assert.Equal(t, 30*time.Minute, token.ExpiresIn())

	subject, err := codec.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenCodec_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue("alice")
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	_, err = codec.Verify(token.Value)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = codec.Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_ExpiredAtExactExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue("alice")
	require.NoError(t, err)

	clock.now = token.ExpiresAt.Add(-time.Nanosecond)
	_, err = codec.Verify(token.Value)
	require.NoError(t, err)

	clock.now = token.ExpiresAt
	_, err = codec.Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_ExpiresInIgnoresSubSecondIssue(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 700_000_000, time.UTC)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, token.ExpiresIn())
}

func TestTokenCodec_RejectsNonCanonicalSignature(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, err := codec.Issue("alice")
	require.NoError(t, err)

	// an HS256 signature is 32 bytes, so the last base64url character
	// carries two unused low bits; flipping one keeps the decoded bytes
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	value := token.Value
	last := strings.IndexByte(alphabet, value[len(value)-1])
	require.GreaterOrEqual(t, last, 0)
	altered := value[:len(value)-1] + string(alphabet[last^1])

	_, err = codec.Verify(altered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	subject, err := codec.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenCodec_NonPositiveLifetimeIsExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)}
	codec := newTestCodec(t, clock)

	for _, lifetime := range []time.Duration{0, -time.Minute} {
		token, err := codec.IssueFor("alice", lifetime)
		require.NoError(t, err)

		_, err = codec.Verify(token.Value)
		assert.ErrorIs(t, err, ErrInvalidToken, lifetime.String())
	}
}

func TestTokenCodec_RejectsEmptySubjectOnIssue(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: time.Now()})

	_, err := codec.Issue("")
	assert.Error(t, err)
}

func TestTokenCodec_RejectsForeignTokens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	codec := newTestCodec(t, clock)
	secret := []byte(cheapAuthConfig().SecretKey)
	exp := jwt.NewNumericDate(clock.now.Add(time.Hour))

	sign := func(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return signed
	}

	otherCfg := cheapAuthConfig()
	otherCfg.SecretKey = "fedcba9876543210fedcba9876543210"
	otherCodec, err := NewTokenCodec(otherCfg, WithClock(clock.Now))
	require.NoError(t, err)
	otherSecret, err := otherCodec.Issue("alice")
	require.NoError(t, err)

	valid, err := codec.Issue("alice")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"three garbage segments", "a.b.c"},
		{"truncated signature", valid.Value[:len(valid.Value)-1]},
		{"different secret", otherSecret.Value},
		{"other hmac algorithm", sign(t, jwt.SigningMethodHS384, secret, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp})},
		{"alg none", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp})},
		{"missing subject", sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{ExpiresAt: exp})},
		{"missing expiry", sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{Subject: "alice"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := codec.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Empty(t, subject)
		})
	}
}

func TestNewTokenCodec_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AuthConfig)
	}{
		{"missing secret", func(c *config.AuthConfig) { c.SecretKey = "" }},
		{"asymmetric algorithm", func(c *config.AuthConfig) { c.Algorithm = "RS256" }},
		{"none algorithm", func(c *config.AuthConfig) { c.Algorithm = "none" }},
		{"zero lifetime", func(c *config.AuthConfig) { c.AccessTokenExpireMinutes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cheapAuthConfig()
			tt.mutate(&cfg)
			_, err := NewTokenCodec(cfg)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}
