package auth

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"github.com/taskdeck/backend/internal/config"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const absentUserPassword = "absent-user-placeholder"

// PasswordHasher hashes passwords with argon2id and verifies stored hashes.
//
// argon2id is slow and memory hungry, so at most N hash or verify
// calls run at once (HASH_CONCURRENCY, GOMAXPROCS when unset). Callers wait for
// a slot under their request context.
type PasswordHasher struct {
	params argon2.Config
	slots  *semaphore.Weighted
	absent string
}

func NewPasswordHasher(cfg config.AuthConfig) (*PasswordHasher, error) {
	params := argon2.DefaultConfig()
	params.MemoryCost = cfg.Argon2MemoryKiB
	params.TimeCost = cfg.Argon2Iterations
	params.Parallelism = cfg.Argon2Parallelism

	slots := cfg.HashConcurrency
	if slots <= 0 {
		slots = runtime.GOMAXPROCS(0)
	}

	h := &PasswordHasher{
		params: params,
		slots:  semaphore.NewWeighted(int64(slots)),
	}

	absent, err := h.Hash(context.Background(), absentUserPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare placeholder hash: %w", err)
	}
	h.absent = absent

	return h, nil
}

// Hash returns the PHC-encoded argon2id hash of plaintext. Every call draws a
// fresh salt, so hashing the same password twice yields different strings.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	params := h.params
	encoded, err := params.HashEncoded([]byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("argon2 hash: %w", err)
	}
	return string(encoded), nil
}

// Verify reports whether plaintext matches the stored hash. Malformed or
// unrecognised hashes never match. The error is non-nil only when ctx ends
// before a hashing slot frees up.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, "$argon2"):
		if err := h.slots.Acquire(ctx, 1); err != nil {
			return false, err
		}
		defer h.slots.Release(1)

		ok, err := argon2.VerifyEncoded([]byte(plaintext), []byte(encoded))
		if err != nil {
			return false, nil
		}
		return ok, nil

	case isBcryptHash(encoded):
		// accounts imported from earlier bcrypt deployments
		if err := h.slots.Acquire(ctx, 1); err != nil {
			return false, err
		}
		defer h.slots.Release(1)

		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil, nil

	default:
		return false, nil
	}
}

// VerifyAbsent runs a full verification against a placeholder hash and
// discards the result. Login calls it when the username is unknown so both
// failure paths cost the same.
func (h *PasswordHasher) VerifyAbsent(ctx context.Context, plaintext string) error {
	_, err := h.Verify(ctx, plaintext, h.absent)
	return err
}

func isBcryptHash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
