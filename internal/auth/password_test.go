package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func cheapAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SecretKey:                "0123456789abcdef0123456789abcdef",
		Algorithm:                "HS256",
		AccessTokenExpireMinutes: 30,
		Argon2MemoryKiB:          1024,
		Argon2Iterations:         1,
		Argon2Parallelism:        1,
		HashConcurrency:          2,
	}
}

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(cheapAuthConfig())
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	encoded, err := h.Hash(ctx, "pw123456")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	assert.Contains(t, encoded, "m=1024,t=1,p=1")
	assert.NotContains(t, encoded, "pw123456")

	ok, err := h.Verify(ctx, "pw123456", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "pw123457", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltedPerCall(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	first, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	second, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasher_EmptyPassword(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	encoded, err := h.Hash(ctx, "")
	require.NoError(t, err)

	ok, err := h.Verify(ctx, "", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "x", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_MalformedHashNeverMatches(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	cases := []string{
		"",
		"plaintext",
		"$argon2id$",
		"$argon2id$v=19$m=1024,t=1,p=1$bm90LWJhc2U2NA",
		"$argon2id$v=19$m=abc,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2g",
		"$2b$10$tooshort",
		"$unknown$scheme",
	}
	for _, encoded := range cases {
		ok, err := h.Verify(ctx, "pw123456", encoded)
		assert.NoError(t, err, encoded)
		assert.False(t, ok, encoded)
	}
}

func TestPasswordHasher_VerifiesBcrypt(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := h.Verify(ctx, "old-password", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "new-password", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_VerifyAbsent(t *testing.T) {
	h := newTestHasher(t)

	assert.NoError(t, h.VerifyAbsent(context.Background(), "anything"))
}

func TestPasswordHasher_WaitRespectsContext(t *testing.T) {
	cfg := cheapAuthConfig()
	cfg.HashConcurrency = 1
	h, err := NewPasswordHasher(cfg)
	require.NoError(t, err)

	require.NoError(t, h.slots.Acquire(context.Background(), 1))
	defer h.slots.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.Hash(ctx, "pw123456")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = h.Verify(ctx, "pw123456", h.absent)
	assert.ErrorIs(t, err, context.Canceled)
}
