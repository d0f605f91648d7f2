package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taskdeck/backend/internal/auth"
	"github.com/taskdeck/backend/internal/db"
	"github.com/taskdeck/backend/internal/model"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConflict      = errors.New("conflict")
	ErrMisconfigured = errors.New("auth config invalid")

	ErrUsernameTaken = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrConflict)
)

type userRepo interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error)
}

type passwordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, encoded string) (bool, error)
	VerifyAbsent(ctx context.Context, plaintext string) error
}

type tokenCodec interface {
	Issue(subject string) (auth.Token, error)
	Verify(token string) (string, error)
}

// AuthService - registration, password login and token resolution.
type AuthService struct {
	repo   userRepo
	hasher passwordHasher
	codec  tokenCodec
}

func NewAuthService(repo userRepo, hasher passwordHasher, codec tokenCodec) (*AuthService, error) {
	if repo == nil || hasher == nil || codec == nil {
		return nil, fmt.Errorf("%w: user store, hasher and token codec are required", ErrMisconfigured)
	}
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		codec:  codec,
	}, nil
}

// Register creates an account. The password is stored only as a hash.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	req := model.RegisterRequest{Username: username, Email: email, Password: password}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, model.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, db.ErrUniqueViolation) {
			if db.ViolatedConstraint(err) == db.ConstraintUsersEmail {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	_, err := s.repo.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case !errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("check username: %w", err)
	}

	_, err = s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

// Authenticate returns the user whose stored hash matches password.
// Unknown usernames and wrong passwords both yield ErrUnauthorized and take
// about the same time.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			if err := s.hasher.VerifyAbsent(ctx, password); err != nil {
				return nil, err
			}
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Login authenticates and issues an access token for the user.
func (s *AuthService) Login(ctx context.Context, username, password string) (auth.Token, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			zerolog.Ctx(ctx).Info().Str("username", username).Msg("login rejected")
		}
		return auth.Token{}, err
	}

	token, err := s.codec.Issue(user.Username)
	if err != nil {
		return auth.Token{}, fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// ResolveToken verifies a bearer token and loads the user it names.
// Invalid tokens and vanished users are ErrUnauthorized; store failures are
// returned wrapped.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	subject, err := s.codec.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.GetUserByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	return user, nil
}
